package broker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAlpacaName(t *testing.T) {
	b := NewAlpaca("key", "secret", "https://paper-api.alpaca.markets")
	if got := b.Name(); got != "alpaca" {
		t.Errorf("Alpaca.Name() = %q, want %q", got, "alpaca")
	}
}

func TestSimulatorName(t *testing.T) {
	s := NewSimulator()
	if got := s.Name(); got != "simulator" {
		t.Errorf("Simulator.Name() = %q, want %q", got, "simulator")
	}
}

func TestSimulatorSubmitAndCancel(t *testing.T) {
	s := NewSimulator()
	ctx := context.Background()

	placed, err := s.SubmitOrder(ctx, OrderRequest{
		Symbol: "AAPL",
		Qty:    decimal.NewFromInt(5),
		Side:   "buy",
		Type:   "market",
	})
	if err != nil {
		t.Fatalf("SubmitOrder error = %v", err)
	}
	if placed.Status != "accepted" {
		t.Errorf("Status = %q, want %q", placed.Status, "accepted")
	}

	if err := s.CancelOrder(ctx, placed.ID); err != nil {
		t.Fatalf("CancelOrder error = %v", err)
	}
	orders := s.Orders()
	if len(orders) != 1 {
		t.Fatalf("len(Orders()) = %d, want 1", len(orders))
	}
	if orders[0].Status != "canceled" {
		t.Errorf("Status after cancel = %q, want %q", orders[0].Status, "canceled")
	}

	if err := s.CancelOrder(ctx, "missing"); err == nil {
		t.Error("CancelOrder(missing) = nil, want error")
	}
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		want     float64
	}{
		{"two sided", 100, 102, 101},
		{"ask only", 0, 102, 102},
		{"bid only", 100, 0, 100},
		{"empty", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := midpoint(tt.bid, tt.ask); got != tt.want {
				t.Errorf("midpoint(%v, %v) = %v, want %v", tt.bid, tt.ask, got, tt.want)
			}
		})
	}
}

func TestRiskGuard(t *testing.T) {
	equity := decimal.NewFromInt(10000)
	price := decimal.NewFromInt(100)

	guard := NewRiskGuard(0.25)
	small := OrderRequest{Symbol: "AAPL", Qty: decimal.NewFromInt(10), Side: "buy"}
	if err := guard.CheckOrder(small, price, equity); err != nil {
		t.Errorf("CheckOrder(small) error = %v, want nil", err)
	}

	big := OrderRequest{Symbol: "AAPL", Qty: decimal.NewFromInt(30), Side: "buy"}
	if err := guard.CheckOrder(big, price, equity); err == nil {
		t.Error("CheckOrder(big) = nil, want error")
	}

	disabled := NewRiskGuard(1.0)
	if err := disabled.CheckOrder(big, price, equity); err != nil {
		t.Errorf("disabled CheckOrder error = %v, want nil", err)
	}
}
