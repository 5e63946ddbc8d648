package cli

import (
	"sort"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

func TestBuildRequestMarket(t *testing.T) {
	flags := orderFlags{qty: "10", orderType: "market", tif: "day"}
	req, err := flags.buildRequest("aapl", alpaca.Buy)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want %q", req.Symbol, "AAPL")
	}
	if req.Type != alpaca.Market {
		t.Errorf("Type = %q, want market", req.Type)
	}
	if req.Qty == nil || !req.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Qty = %v, want 10", req.Qty)
	}
	if req.TimeInForce != alpaca.Day {
		t.Errorf("TimeInForce = %q, want day", req.TimeInForce)
	}
}

func TestBuildRequestLimitRequiresPrice(t *testing.T) {
	flags := orderFlags{qty: "1", orderType: "limit", tif: "gtc"}
	if _, err := flags.buildRequest("AAPL", alpaca.Buy); err == nil {
		t.Error("buildRequest without limit price = nil, want error")
	}

	flags.limitPrice = "180.50"
	req, err := flags.buildRequest("AAPL", alpaca.Buy)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.Type != alpaca.Limit {
		t.Errorf("Type = %q, want limit", req.Type)
	}
	if req.LimitPrice == nil || req.LimitPrice.String() != "180.5" {
		t.Errorf("LimitPrice = %v, want 180.5", req.LimitPrice)
	}
	if req.TimeInForce != alpaca.GTC {
		t.Errorf("TimeInForce = %q, want gtc", req.TimeInForce)
	}
}

func TestBuildRequestStopLimit(t *testing.T) {
	flags := orderFlags{qty: "1", orderType: "stop_limit", tif: "day", limitPrice: "99", stopPrice: "100"}
	req, err := flags.buildRequest("MSFT", alpaca.Sell)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.Type != alpaca.StopLimit {
		t.Errorf("Type = %q, want stop_limit", req.Type)
	}
	if req.StopPrice == nil || req.LimitPrice == nil {
		t.Error("StopPrice and LimitPrice should both be set")
	}
}

func TestBuildRequestTrailingStop(t *testing.T) {
	both := orderFlags{qty: "1", orderType: "trailing_stop", tif: "day", trailPrice: "5", trailPercent: "2"}
	if _, err := both.buildRequest("AAPL", alpaca.Sell); err == nil {
		t.Error("both trail flags = nil error, want error")
	}

	neither := orderFlags{qty: "1", orderType: "trailing_stop", tif: "day"}
	if _, err := neither.buildRequest("AAPL", alpaca.Sell); err == nil {
		t.Error("no trail flags = nil error, want error")
	}

	ok := orderFlags{qty: "1", orderType: "trailing_stop", tif: "day", trailPercent: "2"}
	req, err := ok.buildRequest("AAPL", alpaca.Sell)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.Type != alpaca.TrailingStop {
		t.Errorf("Type = %q, want trailing_stop", req.Type)
	}
	if req.TrailPercent == nil {
		t.Error("TrailPercent should be set")
	}
}

func TestBuildRequestQtyNotionalExclusive(t *testing.T) {
	neither := orderFlags{orderType: "market", tif: "day"}
	if _, err := neither.buildRequest("AAPL", alpaca.Buy); err == nil {
		t.Error("no qty or notional = nil error, want error")
	}

	both := orderFlags{qty: "1", notional: "100", orderType: "market", tif: "day"}
	if _, err := both.buildRequest("AAPL", alpaca.Buy); err == nil {
		t.Error("qty and notional = nil error, want error")
	}

	notional := orderFlags{notional: "500", orderType: "market", tif: "day"}
	req, err := notional.buildRequest("AAPL", alpaca.Buy)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.Notional == nil || req.Qty != nil {
		t.Error("want Notional set and Qty nil")
	}
}

func TestBuildRequestBracket(t *testing.T) {
	half := orderFlags{qty: "1", orderType: "market", tif: "day", takeProfit: "200"}
	if _, err := half.buildRequest("AAPL", alpaca.Buy); err == nil {
		t.Error("take-profit without stop-loss = nil error, want error")
	}

	full := orderFlags{qty: "1", orderType: "market", tif: "day", takeProfit: "200", stopLossStop: "170"}
	req, err := full.buildRequest("AAPL", alpaca.Buy)
	if err != nil {
		t.Fatalf("buildRequest error = %v", err)
	}
	if req.OrderClass != alpaca.Bracket {
		t.Errorf("OrderClass = %q, want bracket", req.OrderClass)
	}
	if req.TakeProfit == nil || req.TakeProfit.LimitPrice == nil {
		t.Error("TakeProfit.LimitPrice should be set")
	}
	if req.StopLoss == nil || req.StopLoss.StopPrice == nil {
		t.Error("StopLoss.StopPrice should be set")
	}
}

func TestBuildRequestUnknownType(t *testing.T) {
	flags := orderFlags{qty: "1", orderType: "iceberg", tif: "day"}
	if _, err := flags.buildRequest("AAPL", alpaca.Buy); err == nil {
		t.Error("unknown order type = nil error, want error")
	}
}

func TestTradeUniverse(t *testing.T) {
	positions := map[string]float64{"AAPL": 10, "MSFT": 5}
	weights := map[string]float64{"MSFT": 0.5, "GOOG": 0.4, "CASH": 0.1}

	got := tradeUniverse(positions, weights)
	sort.Strings(got)
	want := []string{"AAPL", "GOOG", "MSFT"}
	if len(got) != len(want) {
		t.Fatalf("tradeUniverse = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tradeUniverse[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewsRow(t *testing.T) {
	a := marketdata.News{
		CreatedAt: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC),
		Symbols:   []string{"AAPL", "TSLA"},
		Headline:  "Chipmakers rally on strong guidance",
		Author:    "Newswire",
	}
	row := newsRow(a)
	if len(row) != 4 {
		t.Fatalf("newsRow has %d cells, want 4", len(row))
	}
	if row[1] != "AAPL,TSLA" {
		t.Errorf("symbols cell = %q, want %q", row[1], "AAPL,TSLA")
	}
	if row[2] != a.Headline {
		t.Errorf("headline cell = %q, want %q", row[2], a.Headline)
	}
	if row[3] != "Newswire" {
		t.Errorf("author cell = %q, want %q", row[3], "Newswire")
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(not set)"},
		{"abcd", "****"},
		{"PKABCDEF1234", "********1234"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
