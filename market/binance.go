package market

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"github.com/rustyeddy/trendsim/logger"
)

const binanceMaxLimit = 1500

// BinanceSource pulls USDT-perp klines through the go-binance futures
// client. Download pages forward through a range one request at a time,
// so arbitrarily long histories can be pulled without hitting the
// per-request kline cap.
type BinanceSource struct {
	client *futures.Client
}

var _ Source = (*BinanceSource)(nil)

func NewBinanceSource() *BinanceSource {
	// Kline endpoints are public; no API keys required.
	return &BinanceSource{client: futures.NewClient("", "")}
}

func (b *BinanceSource) Name() string { return "binance" }

func (b *BinanceSource) Fetch(ctx context.Context, req FetchRequest) ([]Candle, error) {
	limit := req.Limit
	if limit <= 0 || limit > binanceMaxLimit {
		limit = 1000
	}

	svc := b.client.NewKlinesService().
		Symbol(req.Symbol).
		Interval(req.Interval).
		Limit(limit)
	if req.Start > 0 {
		svc = svc.StartTime(req.Start)
	}
	if req.End > 0 {
		svc = svc.EndTime(req.End)
	}

	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Candle, 0, len(klines))
	for _, k := range klines {
		out = append(out, Candle{
			Timestamp: k.OpenTime,
			Open:      parseF(k.Open),
			High:      parseF(k.High),
			Low:       parseF(k.Low),
			Close:     parseF(k.Close),
			Volume:    parseF(k.Volume),
		})
	}
	return out, nil
}

// Download fetches [start, end) in pages and returns the normalized result.
func (b *BinanceSource) Download(ctx context.Context, symbol string, tf Timeframe, start, end int64) ([]Candle, error) {
	var all []Candle
	cursor := start

	for cursor < end {
		batch, err := b.Fetch(ctx, FetchRequest{
			Symbol:   symbol,
			Interval: tf.Key,
			Start:    cursor,
			End:      end,
			Limit:    binanceMaxLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)

		next := batch[len(batch)-1].Timestamp + tf.Millis()
		if next <= cursor {
			break
		}
		cursor = next

		logger.Debugf("binance %s %s: %d candles, cursor %s",
			symbol, tf.Key, len(all), time.UnixMilli(cursor).UTC().Format(time.RFC3339))
	}

	return Normalize(all), nil
}

func parseF(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
