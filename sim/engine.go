package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
)

// A position below this many contracts is treated as fully closed.
const epsilon = 1e-7

// Config holds the engine's accounting parameters. Zero values fall back
// to conventional perp defaults: 5bp taker fee, 1bp funding every 8h.
type Config struct {
	InitialBalance  float64
	FeeRate         float64
	FundingRate     float64
	FundingInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.FeeRate == 0 {
		c.FeeRate = 0.0005
	}
	if c.FundingRate == 0 {
		c.FundingRate = 0.0001
	}
	if c.FundingInterval == 0 {
		c.FundingInterval = 8 * time.Hour
	}
	return c
}

type position struct {
	side       exchange.Direction
	contracts  float64
	entryPrice float64
}

// Engine simulates a perpetual-futures venue: market fills at the current
// mark price, taker fees, weighted-average entries, realized PnL on
// reduces, and periodic funding charges. Everything is deterministic:
// identical Advance/Fill sequences produce identical order logs.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	markPrice float64
	markTime  int64
	hasMark   bool

	// Unix ms of the last funding settlement; anchored on first Advance.
	fundingAnchor int64

	balance   float64
	positions map[string]*position
	orders    []exchange.OrderRecord
	nextID    int64
}

var _ exchange.Exchange = (*Engine)(nil)

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg.withDefaults(),
		balance:   cfg.InitialBalance,
		positions: make(map[string]*position),
	}
}

// Advance sets the mark price and time. Funding settles when at least one
// funding interval has elapsed since the anchor; the anchor then jumps to
// the current timestamp rather than stepping by the interval, mirroring
// how the bar-driven clock actually moves.
func (e *Engine) Advance(price float64, timestamp int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.markPrice = price
	e.markTime = timestamp
	e.hasMark = true

	if e.fundingAnchor == 0 {
		e.fundingAnchor = timestamp
	}
	if timestamp-e.fundingAnchor >= e.cfg.FundingInterval.Milliseconds() {
		e.chargeFundingLocked()
		e.fundingAnchor = timestamp
	}
}

// Fill executes a market order at the current mark price. The taker fee is
// charged on the requested notional no matter which branch executes.
func (e *Engine) Fill(_ context.Context, symbol string, side exchange.Side, amount float64, reduceOnly bool) (exchange.OrderRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasMark {
		return exchange.OrderRecord{}, exchange.ErrInvalidState
	}

	price := e.markPrice
	fee := price * amount * e.cfg.FeeRate
	e.balance -= fee

	filled := amount
	pos := e.positions[symbol]

	switch {
	case pos == nil && reduceOnly:
		// Nothing to reduce; keep the order in the log with zero size.
		logger.Warnf("sim: reduce-only %s on %s with no position, ignored", side, symbol)
		filled = 0

	case pos == nil:
		dir := exchange.Short
		if side == exchange.Buy {
			dir = exchange.Long
		}
		e.positions[symbol] = &position{side: dir, contracts: amount, entryPrice: price}

	case sameSide(pos.side, side):
		// Add: weighted-average the entry, realize nothing.
		total := pos.contracts + amount
		pos.entryPrice = (pos.contracts*pos.entryPrice + amount*price) / total
		pos.contracts = total

	default:
		// Reduce. Excess size beyond the held contracts is dropped, not
		// flipped into a fresh opposite position.
		closeAmount := math.Min(amount, pos.contracts)
		var pnl float64
		if pos.side == exchange.Long {
			pnl = (price - pos.entryPrice) * closeAmount
		} else {
			pnl = (pos.entryPrice - price) * closeAmount
		}
		e.balance += pnl
		pos.contracts -= closeAmount
		if pos.contracts <= epsilon {
			delete(e.positions, symbol)
		}
	}

	rec := exchange.OrderRecord{
		ID:              e.nextOrderIDLocked(),
		Timestamp:       e.markTime,
		Symbol:          symbol,
		Side:            side,
		Price:           price,
		Amount:          filled,
		Fee:             fee,
		BalanceSnapshot: e.balance,
	}
	e.orders = append(e.orders, rec)
	return rec, nil
}

func (e *Engine) QueryPosition(_ context.Context, symbol string) (exchange.Position, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.positions[symbol]
	if pos == nil || pos.contracts <= 0 {
		return exchange.Position{}, false, nil
	}

	var pnl float64
	if pos.side == exchange.Long {
		pnl = (e.markPrice - pos.entryPrice) * pos.contracts
	} else {
		pnl = (pos.entryPrice - e.markPrice) * pos.contracts
	}

	return exchange.Position{
		Symbol:        symbol,
		Side:          pos.side,
		Contracts:     pos.contracts,
		EntryPrice:    pos.entryPrice,
		UnrealizedPnL: pnl,
	}, true, nil
}

func (e *Engine) QueryBalance(context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance, nil
}

// RoundToPrecision clamps amounts to 6 decimals, enough for the contract
// sizes this simulator deals in.
func (e *Engine) RoundToPrecision(amount float64) float64 {
	return math.Round(amount*1e6) / 1e6
}

// Orders returns a copy of the append-only order log.
func (e *Engine) Orders() []exchange.OrderRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]exchange.OrderRecord, len(e.orders))
	copy(out, e.orders)
	return out
}

func (e *Engine) nextOrderIDLocked() int64 {
	e.nextID++
	return e.nextID
}

func sameSide(dir exchange.Direction, side exchange.Side) bool {
	return (dir == exchange.Long && side == exchange.Buy) ||
		(dir == exchange.Short && side == exchange.Sell)
}
