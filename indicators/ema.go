// Package indicators holds the streaming indicators strategies consume.
package indicators

import "fmt"

// EMA is a streaming Exponential Moving Average. It is seeded with the
// first sample and recursed from there, so every value from the first
// update onward is defined. Ready gates on the period only to give the
// smoothing time to settle.
type EMA struct {
	period int
	alpha  float64
	ema    float64
	count  int
}

// NewEMA creates an Exponential Moving Average with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *EMA) Warmup() int {
	return e.period
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
}

func (e *EMA) Update(price float64) {
	if e.count == 0 {
		e.ema = price
	} else {
		e.ema += e.alpha * (price - e.ema)
	}
	e.count++
}

func (e *EMA) Ready() bool {
	return e.count >= e.period
}

// Value returns the current average. It is defined from the first update;
// callers that want a settled value should check Ready first.
func (e *EMA) Value() float64 {
	return e.ema
}

// Series computes the same recursion over a whole slice at once and
// returns one value per input.
func Series(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	ema := NewEMA(period)
	for i, v := range values {
		ema.Update(v)
		out[i] = ema.Value()
	}
	return out
}
