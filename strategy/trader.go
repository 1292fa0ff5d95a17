package strategy

import (
	"context"
	"time"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/store"
)

// SizeMode selects how the margin for a new order is derived.
type SizeMode string

const (
	// PercentBalance commits a fraction of the realized balance per order.
	PercentBalance SizeMode = "PERCENT_BALANCE"
	// FixedMargin commits the same margin on every order.
	FixedMargin SizeMode = "FIXED_MARGIN"
)

// minMargin is the smallest margin the venue accepts per order.
const minMargin = 6.0

// TraderConfig configures one position lifecycle.
type TraderConfig struct {
	StrategyID string
	Symbol     string

	// MaxAdds caps how many times open may stack onto the same direction.
	MaxAdds int

	Leverage  float64
	SizeMode  SizeMode
	SizeValue float64

	// SettleDelay is the real-time pause between the close and the open of
	// a reversal. It never advances simulated time.
	SettleDelay time.Duration
}

func (c TraderConfig) withDefaults() TraderConfig {
	if c.MaxAdds <= 0 {
		c.MaxAdds = 1
	}
	if c.Leverage <= 0 {
		c.Leverage = 1
	}
	if c.SizeMode == "" {
		c.SizeMode = PercentBalance
	}
	if c.SizeValue <= 0 {
		c.SizeValue = 0.1
	}
	return c
}

// Trader is the position lifecycle state machine for one (strategy,
// symbol) pair. It keeps its own persisted record of what it holds and
// re-converges that record with the exchange on every close.
type Trader struct {
	cfg TraderConfig
	ex  exchange.Exchange
	st  store.Store
}

func NewTrader(cfg TraderConfig, ex exchange.Exchange, st store.Store) *Trader {
	return &Trader{cfg: cfg.withDefaults(), ex: ex, st: st}
}

func (t *Trader) StrategyID() string { return t.cfg.StrategyID }
func (t *Trader) Symbol() string     { return t.cfg.Symbol }

// State returns the persisted lifecycle state.
func (t *Trader) State() (store.PositionState, error) {
	return t.st.PositionDetails(t.cfg.Symbol, t.cfg.StrategyID)
}

// OpenLong opens or adds to a long position. price is the reference price
// used for sizing; the fill itself executes at the exchange's mark.
func (t *Trader) OpenLong(ctx context.Context, price float64) error {
	return t.open(ctx, exchange.Long, price)
}

// OpenShort opens or adds to a short position.
func (t *Trader) OpenShort(ctx context.Context, price float64) error {
	return t.open(ctx, exchange.Short, price)
}

func (t *Trader) open(ctx context.Context, dir exchange.Direction, price float64) error {
	st, err := t.State()
	if err != nil {
		return err
	}
	if st.PosCount >= t.cfg.MaxAdds {
		logger.Warnf("%s: max adds reached (%d), skipping %s open",
			t.cfg.StrategyID, st.PosCount, dir)
		return nil
	}

	amount, err := t.orderAmount(ctx, price)
	if err != nil {
		return err
	}
	if amount <= 0 {
		logger.Warnf("%s: order amount rounds to zero at price %.4f, skipping", t.cfg.StrategyID, price)
		return nil
	}

	rec, err := t.ex.Fill(ctx, t.cfg.Symbol, dir.OpenSide(), amount, false)
	if err != nil {
		return err
	}

	if err := t.st.LogOrder(t.cfg.StrategyID, t.cfg.Symbol, rec.Side, rec.Price, rec.Amount, rec.Fee); err != nil {
		return err
	}
	return t.st.UpdatePosition(t.cfg.Symbol, t.cfg.StrategyID, store.ChangeOpen, rec.Price, dir)
}

// Close flattens the position. It asks the exchange what it actually
// holds and closes that full size, then resets the persisted state no
// matter what, so a drifted record always heals back to flat.
func (t *Trader) Close(ctx context.Context) error {
	pos, ok, err := t.ex.QueryPosition(ctx, t.cfg.Symbol)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warnf("%s: close with no live position, resetting state", t.cfg.StrategyID)
		return t.st.UpdatePosition(t.cfg.Symbol, t.cfg.StrategyID, store.ChangeClose, 0, exchange.None)
	}

	rec, fillErr := t.ex.Fill(ctx, t.cfg.Symbol, pos.Side.CloseSide(), pos.Contracts, true)
	if fillErr == nil {
		if err := t.st.LogOrder(t.cfg.StrategyID, t.cfg.Symbol, rec.Side, rec.Price, rec.Amount, rec.Fee); err != nil {
			return err
		}
	}

	if err := t.st.UpdatePosition(t.cfg.Symbol, t.cfg.StrategyID, store.ChangeClose, 0, exchange.None); err != nil {
		return err
	}
	return fillErr
}

// Settle pauses for the configured reversal delay. Real wall-clock time
// only; simulated time is untouched.
func (t *Trader) Settle() {
	if t.cfg.SettleDelay > 0 {
		time.Sleep(t.cfg.SettleDelay)
	}
}

func (t *Trader) orderAmount(ctx context.Context, price float64) (float64, error) {
	balance, err := t.ex.QueryBalance(ctx)
	if err != nil {
		return 0, err
	}

	var margin float64
	switch t.cfg.SizeMode {
	case FixedMargin:
		margin = t.cfg.SizeValue
	default:
		margin = balance * t.cfg.SizeValue
	}
	if margin < minMargin {
		margin = minMargin
	}

	return t.ex.RoundToPrecision(margin * t.cfg.Leverage / price), nil
}
