// Package binance adapts the Binance USDⓈ-M futures API to the exchange
// interface, so the strategy layer can run live without changing.
package binance

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"

	"github.com/rustyeddy/trendsim/exchange"
	"github.com/rustyeddy/trendsim/logger"
)

// quantityPrecision is the number of decimals quantities are clamped to
// before submission.
const quantityPrecision = 6

// settleAsset is the margin asset balances are reported in.
const settleAsset = "USDT"

// Adapter talks to the live exchange. Advance only records the reference
// price used for sizing; real time moves on its own.
type Adapter struct {
	client *futures.Client

	mu        sync.Mutex
	markPrice float64
	markTime  int64
	hasMark   bool
}

var _ exchange.Exchange = (*Adapter)(nil)

func NewAdapter(apiKey, secretKey string) *Adapter {
	return &Adapter{client: futures.NewClient(apiKey, secretKey)}
}

func (a *Adapter) Advance(price float64, timestamp int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.markPrice = price
	a.markTime = timestamp
	a.hasMark = true
}

// Fill submits a market order. The client order id is fresh per request
// so a retry after a transport error cannot double-fill.
func (a *Adapter) Fill(ctx context.Context, symbol string, side exchange.Side, amount float64, reduceOnly bool) (exchange.OrderRecord, error) {
	a.mu.Lock()
	ready := a.hasMark
	a.mu.Unlock()
	if !ready {
		return exchange.OrderRecord{}, exchange.ErrInvalidState
	}

	sideType := futures.SideTypeBuy
	if side == exchange.Sell {
		sideType = futures.SideTypeSell
	}

	qty := a.RoundToPrecision(amount)
	if qty <= 0 {
		return exchange.OrderRecord{}, fmt.Errorf("binance: quantity %.8f rounds to zero", amount)
	}

	svc := a.client.NewCreateOrderService().
		Symbol(symbol).
		Side(sideType).
		Type(futures.OrderTypeMarket).
		Quantity(strconv.FormatFloat(qty, 'f', quantityPrecision, 64)).
		NewClientOrderID(uuid.NewString())
	if reduceOnly {
		svc = svc.ReduceOnly(true)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return exchange.OrderRecord{}, fmt.Errorf("binance: create order: %w", err)
	}

	price := parseF(resp.AvgPrice)
	filled := parseF(resp.ExecutedQuantity)
	if filled == 0 {
		logger.Warnf("binance: order %d accepted but nothing executed yet", resp.OrderID)
	}

	balance, err := a.QueryBalance(ctx)
	if err != nil {
		logger.Warnf("binance: balance snapshot after fill: %v", err)
	}

	return exchange.OrderRecord{
		ID:              resp.OrderID,
		Timestamp:       resp.UpdateTime,
		Symbol:          symbol,
		Side:            side,
		Price:           price,
		Amount:          filled,
		BalanceSnapshot: balance,
	}, nil
}

func (a *Adapter) QueryPosition(ctx context.Context, symbol string) (exchange.Position, bool, error) {
	risks, err := a.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return exchange.Position{}, false, fmt.Errorf("binance: position risk: %w", err)
	}

	for _, r := range risks {
		amt := parseF(r.PositionAmt)
		if amt == 0 {
			continue
		}
		side := exchange.Long
		if amt < 0 {
			side = exchange.Short
		}
		return exchange.Position{
			Symbol:        r.Symbol,
			Side:          side,
			Contracts:     math.Abs(amt),
			EntryPrice:    parseF(r.EntryPrice),
			UnrealizedPnL: parseF(r.UnRealizedProfit),
		}, true, nil
	}
	return exchange.Position{}, false, nil
}

func (a *Adapter) QueryBalance(ctx context.Context) (float64, error) {
	balances, err := a.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance: balance: %w", err)
	}
	for _, b := range balances {
		if b.Asset == settleAsset {
			return parseF(b.Balance), nil
		}
	}
	return 0, fmt.Errorf("binance: no %s balance", settleAsset)
}

func (a *Adapter) RoundToPrecision(amount float64) float64 {
	p := math.Pow10(quantityPrecision)
	return math.Round(amount*p) / p
}

func parseF(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
