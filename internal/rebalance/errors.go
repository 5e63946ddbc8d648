package rebalance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The calculator brokers irreversible financial transactions, so every
// rejection is a typed, terminating error naming the offending symbol or
// field. Callers branch on error kind with errors.As rather than matching
// message strings.

// MissingDataError reports a required numeric field that was absent.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("data validation failed: %q is missing", e.Field)
}

// InvalidNumberError reports a required numeric field that was present but
// NaN, infinite, or otherwise not convertible to a decimal.
type InvalidNumberError struct {
	Field  string
	Reason string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("data validation failed: %q is %s", e.Field, e.Reason)
}

// NonPositiveEquityError reports an equity value that is zero or negative.
type NonPositiveEquityError struct {
	Equity decimal.Decimal
}

func (e *NonPositiveEquityError) Error() string {
	return fmt.Sprintf("current equity must be positive, received %s", e.Equity)
}

// UnpriceableAssetError reports a price that resolved to exactly zero for a
// symbol that needs one. A zero price signals a bad feed or a delisting,
// never a benign sell-at-zero.
type UnpriceableAssetError struct {
	Symbol string
}

func (e *UnpriceableAssetError) Error() string {
	return fmt.Sprintf("price for %s is 0, aborting rebalance", e.Symbol)
}

// IllegalShortError reports a computed rebalance that would leave a symbol
// with a negative holding while short selling is disallowed.
type IllegalShortError struct {
	Symbol string
	Weight decimal.Decimal
}

func (e *IllegalShortError) Error() string {
	return fmt.Sprintf("calculation results in illegal short position for %s (target weight %s)", e.Symbol, e.Weight)
}
