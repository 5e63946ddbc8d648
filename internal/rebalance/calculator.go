// Package rebalance computes the minimal set of orders needed to move a
// portfolio from its current holdings to a target allocation, under strict
// data-quality and risk constraints.
//
// The calculator is a pure function: no I/O, no shared state, safe to call
// concurrently. All arithmetic runs on decimals so that the short, dust, and
// liquidation branches are not disturbed by binary floating-point drift.
package rebalance

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// CashSymbol is the reserved weight-map key for the un-invested fraction of
// equity. It never generates an order.
const CashSymbol = "CASH"

var (
	// MinQty is the minimum absolute share quantity worth trading. Deltas
	// below it are dropped, and near-zero negative holdings within it are
	// snapped to an exact full liquidation instead of counting as shorts.
	MinQty = decimal.RequireFromString("0.000001")

	// MinNotional is the minimum dollar value worth trading. Smaller trades
	// are dropped unless they fully liquidate an existing position.
	MinNotional = decimal.RequireFromString("1.00")
)

// Side is the direction of an order intent.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderIntent is one calculated trade. Qty is always positive; the direction
// lives in Side. Kind is "market"; callers may translate to limit orders
// using the price map they supplied.
type OrderIntent struct {
	Symbol string
	Qty    decimal.Decimal
	Side   Side
	Kind   string
}

// Calculate returns the orders required to rebalance a portfolio to the
// given target weights.
//
// positions maps symbol to held quantity (absent means zero holding) and
// weights maps symbol to target fraction of equity (absent means zero
// target). prices maps symbol to a reference price; a symbol missing from it
// is an error only when that symbol has a nonzero position or weight. The
// reserved CASH key is excluded from order generation.
//
// Validation is all-or-nothing: any missing, NaN, or non-positive input
// aborts the whole calculation with no orders, since a partial rebalance
// could leave the portfolio in an inconsistent risk state. Results come back
// in no particular order; use SortForExecution before submitting.
func Calculate(equity float64, positions, weights, prices map[string]float64, allowShort bool) ([]OrderIntent, error) {
	if err := ValidateNumber("current_equity", &equity); err != nil {
		return nil, err
	}
	equityD, err := toDecimal("current_equity", equity)
	if err != nil {
		return nil, err
	}
	if !equityD.IsPositive() {
		return nil, &NonPositiveEquityError{Equity: equityD}
	}

	var orders []OrderIntent
	for _, symbol := range universe(positions, weights) {
		// Absent keys default to zero; present-but-NaN values do not.
		rawQty := positions[symbol]
		rawWeight := weights[symbol]
		rawPrice, hasPrice := prices[symbol]

		if err := ValidateNumber("qty for "+symbol, &rawQty); err != nil {
			return nil, err
		}
		if err := ValidateNumber("weight for "+symbol, &rawWeight); err != nil {
			return nil, err
		}

		// A price is required whenever the symbol holds a position or has a
		// target. Even a pure liquidation refuses to trade on a corrupted
		// feed.
		if rawQty != 0 || rawWeight != 0 {
			pricePtr := &rawPrice
			if !hasPrice {
				pricePtr = nil
			}
			if err := ValidateNumber("price for "+symbol, pricePtr); err != nil {
				return nil, err
			}
		}

		qty, err := toDecimal("qty for "+symbol, rawQty)
		if err != nil {
			return nil, err
		}
		weight, err := toDecimal("weight for "+symbol, rawWeight)
		if err != nil {
			return nil, err
		}

		// Irrelevant to this rebalance: no holding, no target.
		if qty.IsZero() && weight.IsZero() {
			continue
		}

		price, err := toDecimal("price for "+symbol, rawPrice)
		if err != nil {
			return nil, err
		}
		if price.IsNegative() {
			return nil, &InvalidNumberError{Field: "price for " + symbol, Reason: "negative"}
		}
		if price.IsZero() {
			return nil, &UnpriceableAssetError{Symbol: symbol}
		}

		targetQty := equityD.Mul(weight).Div(price)
		deltaQty := targetQty.Sub(qty)

		// The final holding equals targetQty; computed from the delta to keep
		// the short check explicit and auditable.
		finalQty := qty.Add(deltaQty)
		if finalQty.IsNegative() && !allowShort {
			if finalQty.Abs().LessThan(MinQty) {
				// Rounding dust below zero: close the position exactly.
				deltaQty = qty.Neg()
			} else {
				return nil, &IllegalShortError{Symbol: symbol, Weight: weight}
			}
		}

		if deltaQty.Abs().LessThan(MinQty) {
			continue
		}

		notional := deltaQty.Abs().Mul(price)
		if notional.LessThan(MinNotional) && !weight.IsZero() {
			// Below the dust threshold and not a full liquidation.
			continue
		}

		side := Buy
		if deltaQty.IsNegative() {
			side = Sell
		}
		orders = append(orders, OrderIntent{
			Symbol: symbol,
			Qty:    deltaQty.Abs(),
			Side:   side,
			Kind:   "market",
		})
	}

	return orders, nil
}

// SortForExecution orders intents sells-first so that sells free cash before
// any buy is attempted. Within each side the input order is preserved. Every
// caller that submits intents for execution must go through this.
func SortForExecution(orders []OrderIntent) []OrderIntent {
	sorted := make([]OrderIntent, 0, len(orders))
	for _, o := range orders {
		if o.Side == Sell {
			sorted = append(sorted, o)
		}
	}
	for _, o := range orders {
		if o.Side == Buy {
			sorted = append(sorted, o)
		}
	}
	return sorted
}

// universe returns the union of position and weight keys, CASH excluded,
// sorted for deterministic iteration.
func universe(positions, weights map[string]float64) []string {
	seen := make(map[string]bool, len(positions)+len(weights))
	for s := range positions {
		seen[s] = true
	}
	for s := range weights {
		seen[s] = true
	}
	delete(seen, CashSymbol)

	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// toDecimal converts a validated float to its exact decimal representation.
// Infinities cannot be represented and are rejected as invalid numbers.
func toDecimal(name string, v float64) (decimal.Decimal, error) {
	if math.IsInf(v, 0) {
		return decimal.Decimal{}, &InvalidNumberError{Field: name, Reason: "not finite"}
	}
	return decimal.NewFromFloat(v), nil
}
