// Package strategy holds the signal generators and the position lifecycle
// that turns signals into fills.
package strategy

import (
	"github.com/rustyeddy/trendsim/indicators"
	"github.com/rustyeddy/trendsim/market"
)

// Signal is a directional trading signal computed from a candle window.
type Signal int

const (
	Hold Signal = iota
	GoldenCross
	DeathCross
)

func (s Signal) String() string {
	switch s {
	case GoldenCross:
		return "GOLDEN_CROSS"
	case DeathCross:
		return "DEATH_CROSS"
	}
	return "HOLD"
}

// Generator computes a Signal from an ordered candle window. Generators
// are pure over their input, so they are testable without any exchange
// state behind them.
type Generator interface {
	// MinBars is the smallest window Evaluate gives a defined answer for.
	MinBars() int
	Evaluate(window []market.Candle) Signal
}

// CrossSignal detects a fast/slow EMA crossover. The cross is evaluated
// on the second-to-last bar so a still-forming candle never triggers it.
type CrossSignal struct {
	fast int
	slow int
}

const (
	DefaultFastPeriod = 21
	DefaultSlowPeriod = 55
)

func NewCrossSignal(fast, slow int) *CrossSignal {
	if fast <= 0 {
		fast = DefaultFastPeriod
	}
	if slow <= 0 {
		slow = DefaultSlowPeriod
	}
	return &CrossSignal{fast: fast, slow: slow}
}

func (g *CrossSignal) MinBars() int {
	return 2 * g.slow
}

func (g *CrossSignal) Evaluate(window []market.Candle) Signal {
	if len(window) < g.MinBars() {
		return Hold
	}

	closes := make([]float64, len(window))
	for i, c := range window {
		closes[i] = c.Close
	}
	fast := indicators.Series(closes, g.fast)
	slow := indicators.Series(closes, g.slow)

	t := len(window) - 2
	p := t - 1

	switch {
	case fast[p] < slow[p] && fast[t] > slow[t]:
		return GoldenCross
	case fast[p] > slow[p] && fast[t] < slow[t]:
		return DeathCross
	}
	return Hold
}
