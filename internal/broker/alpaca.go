package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/NISCHALPI/alpaca-cli/internal/util"
)

// Compile-time interface checks.
var (
	_ AccountSource = (*Alpaca)(nil)
	_ PriceSource   = (*Alpaca)(nil)
	_ OrderSink     = (*Alpaca)(nil)
)

const (
	// The brokerage allows 200 requests per minute per key.
	requestsPerMinute = 200

	maxAttempts = 3
	baseDelay   = 500 * time.Millisecond
)

// Alpaca implements AccountSource, PriceSource, and OrderSink over the
// Alpaca trading and market-data APIs.
type Alpaca struct {
	trading *alpaca.Client
	md      *marketdata.Client
	limiter *util.RateLimiter
}

// NewAlpaca creates an Alpaca broker from credentials and the trading API
// endpoint (paper or live). Market data always goes to the default data
// endpoint regardless of trading mode.
func NewAlpaca(apiKey, apiSecret, baseURL string) *Alpaca {
	return &Alpaca{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		limiter: util.NewRateLimiter(requestsPerMinute),
	}
}

// Name returns "alpaca".
func (a *Alpaca) Name() string { return "alpaca" }

// Trading exposes the underlying trading client for commands that map
// one-to-one onto brokerage endpoints.
func (a *Alpaca) Trading() *alpaca.Client { return a.trading }

// MarketData exposes the underlying market-data client.
func (a *Alpaca) MarketData() *marketdata.Client { return a.md }

// GetAccount returns a snapshot of the account's financial metrics.
func (a *Alpaca) GetAccount(ctx context.Context) (*Account, error) {
	var acct *alpaca.Account
	err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
		var err error
		acct, err = a.trading.GetAccount()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}
	return &Account{
		ID:                acct.ID,
		Status:            string(acct.Status),
		Currency:          acct.Currency,
		Cash:              acct.Cash,
		Equity:            acct.Equity,
		LastEquity:        acct.LastEquity,
		BuyingPower:       acct.BuyingPower,
		PortfolioValue:    acct.PortfolioValue,
		InitialMargin:     acct.InitialMargin,
		MaintenanceMargin: acct.MaintenanceMargin,
		DaytradeCount:     acct.DaytradeCount,
		PatternDayTrader:  acct.PatternDayTrader,
		TradingBlocked:    acct.TradingBlocked,
	}, nil
}

// GetPositions returns all open positions.
func (a *Alpaca) GetPositions(ctx context.Context) ([]Position, error) {
	var raw []alpaca.Position
	err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
		var err error
		raw, err = a.trading.GetPositions()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	positions := make([]Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, Position{
			Symbol:         p.Symbol,
			Qty:            p.Qty,
			AvgEntryPrice:  p.AvgEntryPrice,
			CurrentPrice:   deref(p.CurrentPrice),
			MarketValue:    deref(p.MarketValue),
			CostBasis:      p.CostBasis,
			UnrealizedPL:   deref(p.UnrealizedPL),
			UnrealizedPLPC: deref(p.UnrealizedPLPC),
			Side:           string(p.Side),
		})
	}
	return positions, nil
}

// LatestPrices returns the midpoint of the latest bid and ask for each
// symbol. Symbols containing "/" are crypto pairs and go through the crypto
// quote endpoint; the rest are equities on the IEX feed. Symbols with no
// quote are omitted from the result rather than failed, so the caller's own
// missing-data handling decides the outcome.
func (a *Alpaca) LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	var stocks, cryptos []string
	for _, s := range symbols {
		if strings.Contains(s, "/") {
			cryptos = append(cryptos, s)
		} else {
			stocks = append(stocks, s)
		}
	}

	prices := make(map[string]float64, len(symbols))

	if len(stocks) > 0 {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var quotes map[string]marketdata.Quote
		err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
			var err error
			quotes, err = a.md.GetLatestQuotes(stocks, marketdata.GetLatestQuoteRequest{
				Feed: marketdata.IEX,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching quotes: %w", err)
		}
		for sym, q := range quotes {
			if mid := midpoint(q.BidPrice, q.AskPrice); mid > 0 {
				prices[sym] = mid
			}
		}
	}

	if len(cryptos) > 0 {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var quotes map[string]marketdata.CryptoQuote
		err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
			var err error
			quotes, err = a.md.GetLatestCryptoQuotes(cryptos, marketdata.GetLatestCryptoQuoteRequest{})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching crypto quotes: %w", err)
		}
		for sym, q := range quotes {
			if mid := midpoint(q.BidPrice, q.AskPrice); mid > 0 {
				prices[sym] = mid
			}
		}
	}

	return prices, nil
}

// SubmitOrder places an order with the brokerage.
func (a *Alpaca) SubmitOrder(ctx context.Context, req OrderRequest) (*PlacedOrder, error) {
	qty := req.Qty
	preq := alpaca.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(req.Side),
		Type:        alpaca.OrderType(req.Type),
		TimeInForce: alpaca.TimeInForce(req.TimeInForce),
		LimitPrice:  req.LimitPrice,
	}
	if preq.TimeInForce == "" {
		preq.TimeInForce = alpaca.Day
	}

	var order *alpaca.Order
	err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
		var err error
		order, err = a.trading.PlaceOrder(preq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("placing %s %s %s: %w", req.Side, req.Qty, req.Symbol, err)
	}
	return fromAlpacaOrder(order), nil
}

// CancelOrder requests cancellation of an open order by its ID.
func (a *Alpaca) CancelOrder(ctx context.Context, orderID string) error {
	return util.Retry(ctx, maxAttempts, baseDelay, func() error {
		return a.trading.CancelOrder(orderID)
	})
}

// IsAssetTradable looks up the asset for symbol and reports whether orders
// on it are accepted. Crypto pairs are assumed tradable since the asset
// endpoint covers equities.
func (a *Alpaca) IsAssetTradable(ctx context.Context, symbol string) (bool, error) {
	if strings.Contains(symbol, "/") {
		return true, nil
	}
	var asset *alpaca.Asset
	err := util.Retry(ctx, maxAttempts, baseDelay, func() error {
		var err error
		asset, err = a.trading.GetAsset(symbol)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("looking up asset %s: %w", symbol, err)
	}
	return asset.Tradable, nil
}

func fromAlpacaOrder(o *alpaca.Order) *PlacedOrder {
	qty := decimal.Zero
	if o.Qty != nil {
		qty = *o.Qty
	}
	return &PlacedOrder{
		ID:       o.ID,
		ClientID: o.ClientOrderID,
		Symbol:   o.Symbol,
		Qty:      qty,
		Side:     string(o.Side),
		Type:     string(o.Type),
		Status:   o.Status,
	}
}

func midpoint(bid, ask float64) float64 {
	if bid <= 0 || ask <= 0 {
		// One-sided quote; fall back to whichever side exists.
		if ask > 0 {
			return ask
		}
		return bid
	}
	return (bid + ask) / 2
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
