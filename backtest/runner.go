// Package backtest replays historical candles through a strategy against
// the simulated exchange and reduces the result to performance metrics.
package backtest

import (
	"context"
	"fmt"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/market"
	"github.com/rustyeddy/trendsim/strategy"
)

// DefaultWarmup is the number of leading candles skipped before the
// strategy is allowed to act.
const DefaultWarmup = 60

// EquityPoint is one sample of total account value, recorded after each
// processed bar.
type EquityPoint struct {
	Timestamp int64
	Equity    float64
	Price     float64
}

// Runner drives one strategy over one candle sequence. Execution is
// strictly sequential: same candles and configuration in, byte-identical
// order log and equity curve out.
type Runner struct {
	Exchange exchange.Exchange
	Strategy strategy.Strategy
	Symbol   string

	// Warmup is the number of leading candles skipped before the first
	// decision. It must cover the strategy's MinBars; zero means
	// DefaultWarmup.
	Warmup int
}

// Result carries everything a run produces.
type Result struct {
	Curve  []EquityPoint
	Orders []exchange.OrderRecord
}

// Run replays candles in order. Per bar: advance the mark, let the
// strategy decide, record an equity point. A failing decision is logged
// and skipped; the replay keeps going.
func (r *Runner) Run(ctx context.Context, candles []market.Candle) (Result, error) {
	if r.Exchange == nil {
		return Result{}, fmt.Errorf("backtest: Exchange is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if err := market.Validate(candles); err != nil {
		return Result{}, err
	}

	warmup := r.Warmup
	if warmup <= 0 {
		warmup = DefaultWarmup
	}
	if min := r.Strategy.MinBars(); warmup < min {
		logger.Warnf("backtest: warmup %d below strategy lookback %d, raising", warmup, min)
		warmup = min
	}

	var res Result
	for i := warmup; i < len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		c := candles[i]

		r.Exchange.Advance(c.Close, c.Timestamp)

		if err := r.Strategy.Step(ctx, candles[:i+1]); err != nil {
			logger.Errorf("backtest: bar %d (%s): %v", i, c.Time().Format("2006-01-02 15:04"), err)
		}

		equity, err := r.equity(ctx)
		if err != nil {
			return res, err
		}
		res.Curve = append(res.Curve, EquityPoint{
			Timestamp: c.Timestamp,
			Equity:    equity,
			Price:     c.Close,
		})
	}

	if rec, ok := r.Exchange.(interface{ Orders() []exchange.OrderRecord }); ok {
		res.Orders = rec.Orders()
	}
	return res, nil
}

// equity is the realized balance plus the unrealized PnL of the open
// position for the traded symbol.
func (r *Runner) equity(ctx context.Context) (float64, error) {
	balance, err := r.Exchange.QueryBalance(ctx)
	if err != nil {
		return 0, err
	}
	pos, ok, err := r.Exchange.QueryPosition(ctx, r.Symbol)
	if err != nil {
		return 0, err
	}
	if ok {
		balance += pos.UnrealizedPnL
	}
	return balance, nil
}
