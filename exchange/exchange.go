package exchange

import (
	"context"
	"errors"
)

// ErrInvalidState is returned by an Exchange operation that needs a mark
// price before one has been set with Advance.
var ErrInvalidState = errors.New("exchange: no mark price set")

// Side is the taker side of a fill.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Direction is the side of a held position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	None  Direction = "NONE"
)

// Opposite returns the direction on the other side of the book.
func (d Direction) Opposite() Direction {
	switch d {
	case Long:
		return Short
	case Short:
		return Long
	}
	return None
}

// CloseSide returns the order side that reduces a position held in
// direction d: longs are closed by selling, shorts by buying.
func (d Direction) CloseSide() Side {
	if d == Long {
		return Sell
	}
	return Buy
}

// OpenSide returns the order side that opens or adds to a position in
// direction d.
func (d Direction) OpenSide() Side {
	if d == Short {
		return Sell
	}
	return Buy
}

// Position is a live position as reported by the exchange.
type Position struct {
	Symbol        string
	Side          Direction
	Contracts     float64
	EntryPrice    float64
	UnrealizedPnL float64
}

// OrderRecord is one executed fill. Records are append-only and carry the
// account balance snapshot taken immediately after the fill settled.
type OrderRecord struct {
	ID              int64
	Timestamp       int64
	Symbol          string
	Side            Side
	Price           float64
	Amount          float64
	Fee             float64
	BalanceSnapshot float64
}

// Exchange is the single surface the strategy layer and the orchestrator
// trade against. The simulated engine and the live adapter both implement
// it, so callers never know which one they hold.
type Exchange interface {
	// Advance sets the mark price and time. The simulator uses it to move
	// simulated time forward; a live adapter records it as the reference
	// price for sizing.
	Advance(price float64, timestamp int64)

	// Fill executes a market order at the current mark price. When
	// reduceOnly is set the order may only shrink an existing position.
	Fill(ctx context.Context, symbol string, side Side, amount float64, reduceOnly bool) (OrderRecord, error)

	// QueryPosition reports the open position for symbol, if any.
	QueryPosition(ctx context.Context, symbol string) (Position, bool, error)

	// QueryBalance returns the realized account balance, excluding any
	// unrealized PnL on open positions.
	QueryBalance(ctx context.Context) (float64, error)

	// RoundToPrecision clamps an order amount to the venue's precision.
	RoundToPrecision(amount float64) float64
}
