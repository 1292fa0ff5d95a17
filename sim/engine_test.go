package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendsim/exchange"
)

const symbol = "BTCUSDT"

func newTestEngine(t *testing.T, balance float64) *Engine {
	t.Helper()
	return NewEngine(Config{InitialBalance: balance})
}

func TestFillBeforeAdvance(t *testing.T) {
	e := newTestEngine(t, 10000)

	_, err := e.Fill(context.Background(), symbol, exchange.Buy, 1, false)
	require.ErrorIs(t, err, exchange.ErrInvalidState)
}

func TestOpenLongChargesFee(t *testing.T) {
	e := newTestEngine(t, 10000)
	ctx := context.Background()

	e.Advance(50000, 1_700_000_000_000)
	rec, err := e.Fill(ctx, symbol, exchange.Buy, 0.01, false)
	require.NoError(t, err)

	// fee = 50000 * 0.01 * 0.0005 = 2.5
	assert.InDelta(t, 2.5, rec.Fee, 1e-9)
	assert.InDelta(t, 9997.5, rec.BalanceSnapshot, 1e-9)

	balance, err := e.QueryBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 9997.5, balance, 1e-9)

	pos, ok, err := e.QueryPosition(ctx, symbol)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, exchange.Long, pos.Side)
	assert.InDelta(t, 0.01, pos.Contracts, 1e-12)
	assert.InDelta(t, 50000, pos.EntryPrice, 1e-9)
}

func TestReduceOnlyWithoutPosition(t *testing.T) {
	e := newTestEngine(t, 10000)
	ctx := context.Background()

	e.Advance(100, 1_700_000_000_000)
	rec, err := e.Fill(ctx, symbol, exchange.Sell, 2, true)
	require.NoError(t, err)

	// No position change, but the order is logged with zero size and the
	// fee on the requested notional still applies.
	assert.Zero(t, rec.Amount)
	assert.InDelta(t, 100*2*0.0005, rec.Fee, 1e-12)

	_, ok, err := e.QueryPosition(ctx, symbol)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, e.Orders(), 1)
}

func TestAddReaveragesEntry(t *testing.T) {
	e := newTestEngine(t, 10000)
	ctx := context.Background()

	e.Advance(100, 1_700_000_000_000)
	_, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
	require.NoError(t, err)

	before, err := e.QueryBalance(ctx)
	require.NoError(t, err)

	e.Advance(120, 1_700_000_060_000)
	rec, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
	require.NoError(t, err)

	pos, ok, err := e.QueryPosition(ctx, symbol)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 2.0, pos.Contracts, 1e-12)
	// (1*100 + 1*120) / 2
	assert.InDelta(t, 110, pos.EntryPrice, 1e-9)
	assert.GreaterOrEqual(t, pos.EntryPrice, 100.0)
	assert.LessOrEqual(t, pos.EntryPrice, 120.0)

	// Adding must not realize PnL: only the fee moves the balance.
	after, err := e.QueryBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, before-rec.Fee, after, 1e-9)
}

func TestReduceRealizesPnL(t *testing.T) {
	t.Run("close long at a profit", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, 1_700_000_000_000)
		_, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
		require.NoError(t, err)
		before, _ := e.QueryBalance(ctx)

		e.Advance(110, 1_700_000_060_000)
		rec, err := e.Fill(ctx, symbol, exchange.Sell, 1, true)
		require.NoError(t, err)

		// balance_after = balance_before - fee + realized
		assert.InDelta(t, before-rec.Fee+10, rec.BalanceSnapshot, 1e-9)

		_, ok, err := e.QueryPosition(ctx, symbol)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("excess size is dropped, not flipped", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, 1_700_000_000_000)
		_, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
		require.NoError(t, err)
		before, _ := e.QueryBalance(ctx)

		e.Advance(110, 1_700_000_060_000)
		rec, err := e.Fill(ctx, symbol, exchange.Sell, 1.5, false)
		require.NoError(t, err)

		// Only 1 contract closes; the 0.5 excess never opens a short.
		assert.InDelta(t, before-rec.Fee+10, rec.BalanceSnapshot, 1e-9)
		_, ok, err := e.QueryPosition(ctx, symbol)
		require.NoError(t, err)
		assert.False(t, ok)

		// A fresh short afterwards carries the full requested size.
		_, err = e.Fill(ctx, symbol, exchange.Sell, 1.5, false)
		require.NoError(t, err)
		pos, ok, err := e.QueryPosition(ctx, symbol)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, exchange.Short, pos.Side)
		assert.InDelta(t, 1.5, pos.Contracts, 1e-12)
	})

	t.Run("partial reduce keeps the remainder", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, 1_700_000_000_000)
		_, err := e.Fill(ctx, symbol, exchange.Sell, 2, false)
		require.NoError(t, err)

		e.Advance(90, 1_700_000_060_000)
		before, _ := e.QueryBalance(ctx)
		rec, err := e.Fill(ctx, symbol, exchange.Buy, 0.5, true)
		require.NoError(t, err)

		// Short closed at a profit: (100-90)*0.5 = 5
		assert.InDelta(t, before-rec.Fee+5, rec.BalanceSnapshot, 1e-9)

		pos, ok, err := e.QueryPosition(ctx, symbol)
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, 1.5, pos.Contracts, 1e-12)
		assert.InDelta(t, 100, pos.EntryPrice, 1e-9)
	})
}

func TestUnrealizedPnL(t *testing.T) {
	e := newTestEngine(t, 10000)
	ctx := context.Background()

	e.Advance(100, 1_700_000_000_000)
	_, err := e.Fill(ctx, symbol, exchange.Buy, 2, false)
	require.NoError(t, err)

	e.Advance(105, 1_700_000_060_000)
	pos, ok, err := e.QueryPosition(ctx, symbol)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10, pos.UnrealizedPnL, 1e-9)

	// Realized balance must not include it.
	balance, err := e.QueryBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10000-100*2*0.0005, balance, 1e-9)
}

func TestFundingChargesLongsOnly(t *testing.T) {
	start := int64(1_700_000_000_000)
	eightHours := (8 * time.Hour).Milliseconds()

	t.Run("long pays after one interval", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, start)
		_, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
		require.NoError(t, err)
		before, _ := e.QueryBalance(ctx)

		e.Advance(100, start+eightHours)
		after, _ := e.QueryBalance(ctx)
		// 1 * 100 * 0.0001 = 0.01
		assert.InDelta(t, before-0.01, after, 1e-9)
	})

	t.Run("short is exempt", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, start)
		_, err := e.Fill(ctx, symbol, exchange.Sell, 1, false)
		require.NoError(t, err)
		before, _ := e.QueryBalance(ctx)

		e.Advance(100, start+eightHours)
		after, _ := e.QueryBalance(ctx)
		assert.InDelta(t, before, after, 1e-12)
	})

	t.Run("anchor resets on settlement", func(t *testing.T) {
		e := newTestEngine(t, 10000)
		ctx := context.Background()

		e.Advance(100, start)
		_, err := e.Fill(ctx, symbol, exchange.Buy, 1, false)
		require.NoError(t, err)

		e.Advance(100, start+eightHours)
		mid, _ := e.QueryBalance(ctx)

		// Half an interval later nothing further is due.
		e.Advance(100, start+eightHours+eightHours/2)
		after, _ := e.QueryBalance(ctx)
		assert.InDelta(t, mid, after, 1e-12)
	})
}

func TestOrderLogIsSequential(t *testing.T) {
	e := newTestEngine(t, 10000)
	ctx := context.Background()

	e.Advance(100, 1_700_000_000_000)
	for i := 0; i < 5; i++ {
		_, err := e.Fill(ctx, symbol, exchange.Buy, 0.1, false)
		require.NoError(t, err)
	}

	orders := e.Orders()
	require.Len(t, orders, 5)
	for i, rec := range orders {
		assert.Equal(t, int64(i+1), rec.ID)
	}
}

func TestRoundToPrecision(t *testing.T) {
	e := newTestEngine(t, 0)
	assert.InDelta(t, 0.123457, e.RoundToPrecision(0.123456789), 1e-12)
	assert.InDelta(t, 2.0, e.RoundToPrecision(2.0000000001), 1e-12)
}
