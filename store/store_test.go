package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendsim/exchange"
)

// Both implementations run through the same behavioral suite, since they
// have to be interchangeable.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemory()
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.db")
		s, err := NewSQLite(path)
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func TestUnknownPairIsFlat(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		st, err := s.PositionDetails("BTCUSDT", "trend-01")
		require.NoError(t, err)
		assert.Equal(t, Flat(), st)
		assert.Equal(t, exchange.None, st.Direction)
		assert.Zero(t, st.PosCount)
	})
}

func TestOpenAddClose(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		const sym, id = "BTCUSDT", "trend-01"

		require.NoError(t, s.UpdatePosition(sym, id, ChangeOpen, 60000, exchange.Long))
		st, err := s.PositionDetails(sym, id)
		require.NoError(t, err)
		assert.Equal(t, 1, st.Status)
		assert.Equal(t, 1, st.PosCount)
		assert.Equal(t, exchange.Long, st.Direction)
		assert.InDelta(t, 60000, st.EntryPrice, 1e-9)

		// Add without a direction keeps the held one.
		require.NoError(t, s.UpdatePosition(sym, id, ChangeOpen, 59500, exchange.None))
		st, err = s.PositionDetails(sym, id)
		require.NoError(t, err)
		assert.Equal(t, 2, st.PosCount)
		assert.Equal(t, exchange.Long, st.Direction)
		assert.InDelta(t, 59500, st.EntryPrice, 1e-9)

		// Close resets everything, including the count.
		require.NoError(t, s.UpdatePosition(sym, id, ChangeClose, 0, exchange.None))
		st, err = s.PositionDetails(sym, id)
		require.NoError(t, err)
		assert.Equal(t, Flat(), st)
	})
}

func TestOpenWithoutDirectionDefaultsLong(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.UpdatePosition("ETHUSDT", "x", ChangeOpen, 3000, exchange.None))
		st, err := s.PositionDetails("ETHUSDT", "x")
		require.NoError(t, err)
		assert.Equal(t, exchange.Long, st.Direction)
	})
}

func TestUnknownChangeRejected(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		err := s.UpdatePosition("BTCUSDT", "x", ChangeType("FLIP"), 1, exchange.Long)
		require.Error(t, err)

		// State untouched.
		st, err := s.PositionDetails("BTCUSDT", "x")
		require.NoError(t, err)
		assert.Equal(t, Flat(), st)
	})
}

func TestPairsAreIndependent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.UpdatePosition("BTCUSDT", "a", ChangeOpen, 100, exchange.Long))
		require.NoError(t, s.UpdatePosition("BTCUSDT", "b", ChangeOpen, 200, exchange.Short))

		stA, err := s.PositionDetails("BTCUSDT", "a")
		require.NoError(t, err)
		stB, err := s.PositionDetails("BTCUSDT", "b")
		require.NoError(t, err)

		assert.Equal(t, exchange.Long, stA.Direction)
		assert.Equal(t, exchange.Short, stB.Direction)
	})
}

func TestSQLiteOrderLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.LogOrder("trend-01", "BTCUSDT", exchange.Buy, 60000, 0.01, 0.3))
	require.NoError(t, s.LogOrder("trend-01", "BTCUSDT", exchange.Sell, 61000, 0.01, 0.305))
	require.NoError(t, s.LogOrder("other", "ETHUSDT", exchange.Buy, 3000, 1, 1.5))

	rows, err := s.ListOrders("trend-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exchange.Buy, rows[0].Side)
	assert.Equal(t, exchange.Sell, rows[1].Side)
	assert.InDelta(t, 60000, rows[0].Price, 1e-9)
}

func TestSQLiteStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.UpdatePosition("BTCUSDT", "trend-01", ChangeOpen, 60000, exchange.Short))
	require.NoError(t, s.Close())

	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	st, err := s2.PositionDetails("BTCUSDT", "trend-01")
	require.NoError(t, err)
	assert.Equal(t, exchange.Short, st.Direction)
	assert.Equal(t, 1, st.PosCount)
}
