package rebalance

import "math"

// ValidateNumber strictly rejects missing or NaN values before any
// arithmetic touches them. nil is treated as missing data (a null field from
// an upstream feed), NaN as a corrupted value. Any other number passes,
// including negative, zero, and very large values.
//
// This is a fail-fast gate, not a sanitizer: it never defaults or coerces.
func ValidateNumber(name string, v *float64) error {
	if v == nil {
		return &MissingDataError{Field: name}
	}
	if math.IsNaN(*v) {
		return &InvalidNumberError{Field: name, Reason: "NaN"}
	}
	return nil
}
