// Package broker defines narrow interfaces over brokerage operations and
// provides an Alpaca-backed implementation plus an in-memory simulator used
// for dry runs and tests.
package broker

import (
	"context"

	"github.com/shopspring/decimal"
)

// Account is a snapshot of the account's financial metrics.
type Account struct {
	ID               string
	Status           string
	Currency         string
	Cash             decimal.Decimal
	Equity           decimal.Decimal
	LastEquity       decimal.Decimal
	BuyingPower      decimal.Decimal
	PortfolioValue   decimal.Decimal
	InitialMargin    decimal.Decimal
	MaintenanceMargin decimal.Decimal
	DaytradeCount    int64
	PatternDayTrader bool
	TradingBlocked   bool
}

// Position is an open position held at the brokerage.
type Position struct {
	Symbol         string
	Qty            decimal.Decimal
	AvgEntryPrice  decimal.Decimal
	CurrentPrice   decimal.Decimal
	MarketValue    decimal.Decimal
	CostBasis      decimal.Decimal
	UnrealizedPL   decimal.Decimal
	UnrealizedPLPC decimal.Decimal
	Side           string
}

// OrderRequest describes an order to submit. LimitPrice is nil for market
// orders.
type OrderRequest struct {
	Symbol      string
	Qty         decimal.Decimal
	Side        string // "buy" or "sell"
	Type        string // "market" or "limit"
	LimitPrice  *decimal.Decimal
	TimeInForce string // "day", "gtc", ...
}

// PlacedOrder is the brokerage's acknowledgement of a submitted order.
type PlacedOrder struct {
	ID       string
	ClientID string
	Symbol   string
	Qty      decimal.Decimal
	Side     string
	Type     string
	Status   string
}

// AccountSource provides account equity and current holdings.
type AccountSource interface {
	GetAccount(ctx context.Context) (*Account, error)
	GetPositions(ctx context.Context) ([]Position, error)
}

// PriceSource provides a reference price per symbol. Implementations return
// the midpoint of the latest bid and ask.
type PriceSource interface {
	LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// OrderSink accepts orders for execution.
type OrderSink interface {
	// Name returns the sink identifier (e.g. "alpaca", "simulator").
	Name() string

	SubmitOrder(ctx context.Context, req OrderRequest) (*PlacedOrder, error)

	// CancelOrder requests cancellation of an open order by its ID.
	CancelOrder(ctx context.Context, orderID string) error
}
