package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/trendsim/market"
)

// Strategy is the minimal interface the backtest runner drives. It is
// called once per bar with the candle window up to and including the bar
// being processed.
type Strategy interface {
	Name() string

	// MinBars is the smallest window Step acts on; the runner's warmup
	// must be at least this.
	MinBars() int

	Step(ctx context.Context, window []market.Candle) error
}

// New builds a strategy by name.
func New(name string, trader *Trader, fast, slow int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "double-ma", "doublema", "":
		return NewDoubleMA(trader, fast, slow), nil

	case "noop", "none":
		return Noop{}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: double-ma, noop)", name)
	}
}

// Noop never trades. Useful for dry-running a data set through the
// runner.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) MinBars() int { return 0 }

func (Noop) Step(ctx context.Context, window []market.Candle) error { return nil }
