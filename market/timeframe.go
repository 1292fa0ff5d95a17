package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timeframe is a named bar duration like "1m", "4h" or "1d".
type Timeframe struct {
	Key      string
	Duration time.Duration
}

func (tf Timeframe) Millis() int64 {
	return tf.Duration.Milliseconds()
}

// ParseTimeframe accepts <n><unit> with unit one of m/h/d/w.
func ParseTimeframe(s string) (Timeframe, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) < 2 {
		return Timeframe{}, fmt.Errorf("invalid timeframe %q", s)
	}
	n, err := strconv.Atoi(key[:len(key)-1])
	if err != nil || n <= 0 {
		return Timeframe{}, fmt.Errorf("invalid timeframe %q", s)
	}

	var unit time.Duration
	switch key[len(key)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return Timeframe{}, fmt.Errorf("invalid timeframe unit in %q", s)
	}

	return Timeframe{Key: key, Duration: time.Duration(n) * unit}, nil
}

// AnnualizationFactor returns the number of bars per 365-day year for the
// timeframe, used to annualize Sharpe ratios (4h bars -> 2190).
func (tf Timeframe) AnnualizationFactor() float64 {
	year := 365 * 24 * time.Hour
	return float64(year) / float64(tf.Duration)
}
