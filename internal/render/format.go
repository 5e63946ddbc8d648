package render

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency formats a decimal dollar amount as $X,XXX.XX, with a leading
// minus before the dollar sign for negatives.
func Currency(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := groupThousands(d.Abs().StringFixed(2))
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// Percent formats a fraction (0.0132) as a signed percentage (+1.32%).
func Percent(d decimal.Decimal) string {
	pct := d.Mul(decimal.NewFromInt(100))
	if pct.IsNegative() {
		return pct.StringFixed(2) + "%"
	}
	return "+" + pct.StringFixed(2) + "%"
}

// Qty formats a share quantity, trimming trailing fractional zeros so whole
// shares read as integers.
func Qty(d decimal.Decimal) string {
	s := d.StringFixed(6)
	return decimal.RequireFromString(s).String()
}

func groupThousands(s string) string {
	dot := len(s)
	for i, r := range s {
		if r == '.' {
			dot = i
			break
		}
	}
	intPart, frac := s[:dot], s[dot:]
	if len(intPart) <= 3 {
		return s
	}
	var out []byte
	start := len(intPart) % 3
	if start > 0 {
		out = append(out, intPart[:start]...)
	}
	for i := start; i < len(intPart); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i:i+3]...)
	}
	return fmt.Sprintf("%s%s", out, frac)
}
