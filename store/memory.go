package store

import (
	"sync"
	"time"

	"github.com/rustyeddy/trendsim/exchange"
)

type stateKey struct {
	strategyID string
	symbol     string
}

// OrderRow mirrors one row of the orders table.
type OrderRow struct {
	StrategyID string
	Timestamp  time.Time
	Symbol     string
	Side       exchange.Side
	Price      float64
	Amount     float64
	Fee        float64
}

// Memory is the in-process Store used by backtests, where nothing should
// touch disk between runs.
type Memory struct {
	mu     sync.Mutex
	state  map[stateKey]PositionState
	orders []OrderRow
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{state: make(map[stateKey]PositionState)}
}

func (m *Memory) PositionDetails(symbol, strategyID string) (PositionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.state[stateKey{strategyID, symbol}]; ok {
		return st, nil
	}
	return Flat(), nil
}

func (m *Memory) UpdatePosition(symbol, strategyID string, change ChangeType, price float64, direction exchange.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := stateKey{strategyID, symbol}
	cur, ok := m.state[key]
	if !ok {
		cur = Flat()
	}
	next, err := applyChange(cur, change, price, direction)
	if err != nil {
		return err
	}
	m.state[key] = next
	return nil
}

func (m *Memory) LogOrder(strategyID, symbol string, side exchange.Side, price, amount, fee float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = append(m.orders, OrderRow{
		StrategyID: strategyID,
		Timestamp:  time.Now(),
		Symbol:     symbol,
		Side:       side,
		Price:      price,
		Amount:     amount,
		Fee:        fee,
	})
	return nil
}

// Orders returns a copy of the logged order history.
func (m *Memory) Orders() []OrderRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OrderRow, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *Memory) Close() error { return nil }
