package market

import "context"

// FetchRequest describes a candle range to fetch from a Source.
// Start/End are Unix milliseconds; zero means unbounded on that side.
type FetchRequest struct {
	Symbol   string
	Interval string
	Start    int64
	End      int64
	Limit    int
}

// Source supplies historical candles. Implementations must return candles
// sorted by timestamp without duplicates.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req FetchRequest) ([]Candle, error)
}
