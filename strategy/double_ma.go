package strategy

import (
	"context"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/market"
)

// DoubleMA trades a fast/slow EMA crossover through a Trader:
//   - golden cross: open or add to a long; reverse out of a short first
//   - death cross: open or add to a short; reverse out of a long first
//   - hold: nothing
//
// A reversal is a close followed by an open with the settle delay between
// them; the two fills are deliberately not atomic.
type DoubleMA struct {
	trader *Trader
	gen    *CrossSignal
}

func NewDoubleMA(trader *Trader, fast, slow int) *DoubleMA {
	return &DoubleMA{
		trader: trader,
		gen:    NewCrossSignal(fast, slow),
	}
}

func (s *DoubleMA) Name() string {
	return "double-ma"
}

func (s *DoubleMA) MinBars() int {
	return s.gen.MinBars()
}

// Step runs one decision against the current candle window. The last
// candle in the window is the bar being processed.
func (s *DoubleMA) Step(ctx context.Context, window []market.Candle) error {
	sig := s.gen.Evaluate(window)
	if sig == Hold {
		return nil
	}

	st, err := s.trader.State()
	if err != nil {
		return err
	}
	price := window[len(window)-1].Close

	logger.Debugf("%s: %s while %s(%d)", s.trader.StrategyID(), sig, st.Direction, st.PosCount)

	switch sig {
	case GoldenCross:
		if st.Direction == exchange.Short {
			if err := s.trader.Close(ctx); err != nil {
				return err
			}
			s.trader.Settle()
		}
		return s.trader.OpenLong(ctx, price)

	case DeathCross:
		if st.Direction == exchange.Long {
			if err := s.trader.Close(ctx); err != nil {
				return err
			}
			s.trader.Settle()
		}
		return s.trader.OpenShort(ctx, price)
	}
	return nil
}
