// Package store persists per-strategy position state and an order history.
//
// The persisted state is the strategy layer's own record of what it holds
// and how many times it has added. It is deliberately independent of the
// exchange's live position: the two may diverge for a moment mid-reversal,
// and the lifecycle code re-converges them on close.
package store

import (
	"fmt"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
)

// PositionState is the persisted record for one (strategy, symbol) pair.
type PositionState struct {
	Status     int // 0 flat, 1 holding
	EntryPrice float64
	PosCount   int
	Direction  exchange.Direction
}

// Flat is the state every unknown (strategy, symbol) pair starts in.
func Flat() PositionState {
	return PositionState{Direction: exchange.None}
}

// ChangeType selects how UpdatePosition mutates the state.
type ChangeType string

const (
	ChangeOpen  ChangeType = "OPEN"  // open or add
	ChangeClose ChangeType = "CLOSE" // full close
)

// Store is the persistence surface the strategy layer depends on. The
// in-memory and SQLite implementations are interchangeable.
type Store interface {
	// PositionDetails returns the persisted state, or Flat() when the
	// pair has never been written.
	PositionDetails(symbol, strategyID string) (PositionState, error)

	// UpdatePosition applies change at price. Direction is honored on
	// OPEN and ignored on CLOSE.
	UpdatePosition(symbol, strategyID string, change ChangeType, price float64, direction exchange.Direction) error

	// LogOrder appends one executed order to the history.
	LogOrder(strategyID, symbol string, side exchange.Side, price, amount, fee float64) error

	Close() error
}

// applyChange computes the next state from the current one. Both
// implementations funnel through here so their behavior cannot drift.
func applyChange(cur PositionState, change ChangeType, price float64, direction exchange.Direction) (PositionState, error) {
	switch change {
	case ChangeOpen:
		next := cur
		next.PosCount++
		next.Status = 1
		next.EntryPrice = price
		if direction != "" && direction != exchange.None {
			next.Direction = direction
		} else if next.Direction == exchange.None || next.Direction == "" {
			logger.Warnf("store: open without a direction, defaulting to LONG")
			next.Direction = exchange.Long
		}
		return next, nil

	case ChangeClose:
		return PositionState{Direction: exchange.None}, nil

	default:
		return cur, fmt.Errorf("store: unknown change type %q", change)
	}
}
