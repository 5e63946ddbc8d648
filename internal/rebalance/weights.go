package rebalance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weight-sum tolerance for a fully specified allocation. Caller policy, not
// a calculator contract: the calculator only sees the resolved map.
const (
	minTotalWeight = 0.99
	maxTotalWeight = 1.01
)

// LoadWeights reads a target allocation from path: a flat symbol-to-fraction
// mapping in YAML or JSON (JSON parses as YAML). Symbols are upper-cased.
//
// When the reserved CASH key is absent it is inferred as 1 − sum(others),
// so the calculator always receives a fully specified weight map. The
// resolved total must land in [0.99, 1.01] or the load fails.
func LoadWeights(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}

	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing weights file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("weights file %s defines no allocations", path)
	}

	weights := make(map[string]float64, len(raw)+1)
	for symbol, w := range raw {
		norm := strings.ToUpper(strings.TrimSpace(symbol))
		if norm == "" {
			return nil, fmt.Errorf("weights file contains an empty symbol")
		}
		if _, dup := weights[norm]; dup {
			return nil, fmt.Errorf("duplicate symbol %s in weights file", norm)
		}
		weights[norm] = w
	}

	if _, ok := weights[CashSymbol]; !ok {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		cash := 1.0 - sum
		if cash < minTotalWeight-1.0 {
			return nil, fmt.Errorf("allocations sum to %.4f, leaving negative cash", sum)
		}
		weights[CashSymbol] = cash
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total < minTotalWeight || total > maxTotalWeight {
		return nil, fmt.Errorf("total target weight is %.4f, must be between %.2f and %.2f", total, minTotalWeight, maxTotalWeight)
	}

	return weights, nil
}
