package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/trendsim/exchange"
)

// SQLite is the durable Store. State survives restarts, which is what the
// live trading path needs to pick up where it left off.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) PositionDetails(symbol, strategyID string) (PositionState, error) {
	row := s.db.QueryRow(`
		SELECT position_status, entry_price, pos_count, direction
		FROM state
		WHERE strategy_id = ? AND symbol = ?`, strategyID, symbol)

	var st PositionState
	var dir string
	err := row.Scan(&st.Status, &st.EntryPrice, &st.PosCount, &dir)
	if err == sql.ErrNoRows {
		return Flat(), nil
	}
	if err != nil {
		return PositionState{}, err
	}
	st.Direction = exchange.Direction(dir)
	return st, nil
}

func (s *SQLite) UpdatePosition(symbol, strategyID string, change ChangeType, price float64, direction exchange.Direction) error {
	cur, err := s.PositionDetails(symbol, strategyID)
	if err != nil {
		return err
	}
	next, err := applyChange(cur, change, price, direction)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO state
		(strategy_id, symbol, position_status, entry_price, pos_count, direction)
		VALUES (?, ?, ?, ?, ?, ?)`,
		strategyID, symbol, next.Status, next.EntryPrice, next.PosCount, string(next.Direction),
	)
	return err
}

func (s *SQLite) LogOrder(strategyID, symbol string, side exchange.Side, price, amount, fee float64) error {
	_, err := s.db.Exec(`
		INSERT INTO orders (strategy_id, timestamp, symbol, side, price, amount, fee)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strategyID, time.Now().UTC(), symbol, string(side), price, amount, fee,
	)
	return err
}

// ListOrders returns the logged orders for a strategy, oldest first.
func (s *SQLite) ListOrders(strategyID string) ([]OrderRow, error) {
	rows, err := s.db.Query(`
		SELECT strategy_id, timestamp, symbol, side, price, amount, fee
		FROM orders
		WHERE strategy_id = ?
		ORDER BY id ASC`, strategyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRow
	for rows.Next() {
		var rec OrderRow
		var side string
		if err := rows.Scan(&rec.StrategyID, &rec.Timestamp, &rec.Symbol, &side, &rec.Price, &rec.Amount, &rec.Fee); err != nil {
			return nil, err
		}
		rec.Side = exchange.Side(side)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
