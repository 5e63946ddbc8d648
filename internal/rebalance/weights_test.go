package rebalance

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeWeights(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing weights file: %v", err)
	}
	return path
}

func TestLoadWeightsJSON(t *testing.T) {
	path := writeWeights(t, `{"AAPL": 0.5, "CASH": 0.5}`)
	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights returned error: %v", err)
	}
	if w["AAPL"] != 0.5 || w[CashSymbol] != 0.5 {
		t.Errorf("weights = %v, want AAPL=0.5 CASH=0.5", w)
	}
}

func TestLoadWeightsYAML(t *testing.T) {
	path := writeWeights(t, "aapl: 0.6\nmsft: 0.3\ncash: 0.1\n")
	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights returned error: %v", err)
	}
	// Symbols are upper-cased.
	if w["AAPL"] != 0.6 || w["MSFT"] != 0.3 || w[CashSymbol] != 0.1 {
		t.Errorf("weights = %v, want upper-cased AAPL/MSFT/CASH", w)
	}
}

func TestLoadWeightsInfersCash(t *testing.T) {
	path := writeWeights(t, `{"AAPL": 0.6, "MSFT": 0.3}`)
	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights returned error: %v", err)
	}
	if math.Abs(w[CashSymbol]-0.1) > 1e-9 {
		t.Errorf("inferred CASH = %v, want 0.1", w[CashSymbol])
	}
}

func TestLoadWeightsRejectsBadTotal(t *testing.T) {
	// CASH explicitly present, total 1.2: outside [0.99, 1.01].
	path := writeWeights(t, `{"AAPL": 0.7, "MSFT": 0.3, "CASH": 0.2}`)
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("LoadWeights accepted total weight 1.2")
	}
}

func TestLoadWeightsRejectsOverAllocation(t *testing.T) {
	// Without an explicit CASH entry the remainder would be negative.
	path := writeWeights(t, `{"AAPL": 0.8, "MSFT": 0.5}`)
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("LoadWeights accepted allocations summing to 1.3")
	}
}

func TestLoadWeightsWithinTolerance(t *testing.T) {
	path := writeWeights(t, `{"AAPL": 0.55, "CASH": 0.4401}`)
	if _, err := LoadWeights(path); err != nil {
		t.Fatalf("LoadWeights rejected total 0.9901: %v", err)
	}
}

func TestLoadWeightsDuplicateSymbol(t *testing.T) {
	// Same symbol in different case collapses to a duplicate.
	path := writeWeights(t, "AAPL: 0.5\naapl: 0.5\n")
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("LoadWeights accepted duplicate symbol")
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("LoadWeights accepted a missing file")
	}
}

func TestLoadWeightsEmpty(t *testing.T) {
	path := writeWeights(t, `{}`)
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("LoadWeights accepted an empty mapping")
	}
}
