package market

import (
	"fmt"
	"sort"
	"time"
)

// Candle is one OHLCV bar. Timestamp is the bar open time in Unix
// milliseconds, matching what exchanges return for klines.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Normalize sorts candles by timestamp and drops duplicate timestamps,
// keeping the first occurrence. The result satisfies Validate.
func Normalize(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	copy(out, candles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	dedup := out[:0]
	var last int64 = -1
	for _, c := range out {
		if c.Timestamp == last {
			continue
		}
		dedup = append(dedup, c)
		last = c.Timestamp
	}
	return dedup
}

// Validate checks that timestamps are strictly increasing.
func Validate(candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp <= candles[i-1].Timestamp {
			return fmt.Errorf("candle %d: timestamp %d not after %d",
				i, candles[i].Timestamp, candles[i-1].Timestamp)
		}
	}
	return nil
}
