package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entries := []Entry{
		{Symbol: "AAPL", Side: "buy", Qty: decimal.RequireFromString("1.25"), Kind: "market", OrderID: "ord-1"},
		{Symbol: "MSFT", Side: "sell", Qty: decimal.NewFromInt(3), Kind: "market", DryRun: true},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s) error = %v", e.Symbol, err)
		}
	}

	got, err := j.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(got))
	}

	// Newest first.
	if got[0].Symbol != "MSFT" {
		t.Errorf("got[0].Symbol = %q, want %q", got[0].Symbol, "MSFT")
	}
	if !got[0].DryRun {
		t.Error("got[0].DryRun = false, want true")
	}
	if got[1].OrderID != "ord-1" {
		t.Errorf("got[1].OrderID = %q, want %q", got[1].OrderID, "ord-1")
	}
	if !got[1].Qty.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("got[1].Qty = %s, want 1.25", got[1].Qty)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("got[0].Timestamp is zero, want defaulted to now")
	}
}

func TestListLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := Entry{
			Timestamp: time.Now().UTC(),
			Symbol:    "SPY",
			Side:      "buy",
			Qty:       decimal.NewFromInt(int64(i + 1)),
			Kind:      "market",
		}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := j.List(ctx, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(List(3)) = %d, want 3", len(got))
	}
}

func TestListEmpty(t *testing.T) {
	j := openTestJournal(t)
	got, err := j.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(List()) = %d, want 0", len(got))
	}
}
