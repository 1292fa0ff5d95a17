package store

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	fee REAL
);

CREATE TABLE IF NOT EXISTS state (
	strategy_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	position_status INTEGER DEFAULT 0,
	entry_price REAL DEFAULT 0.0,
	pos_count INTEGER DEFAULT 0,
	direction TEXT DEFAULT 'NONE',
	PRIMARY KEY (strategy_id, symbol)
);

CREATE INDEX IF NOT EXISTS idx_orders_strategy ON orders(strategy_id, timestamp);
`
