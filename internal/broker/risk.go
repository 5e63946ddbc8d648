package broker

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskGuard enforces pre-trade position sizing limits.
type RiskGuard struct {
	maxPositionPct decimal.Decimal
}

// NewRiskGuard creates a RiskGuard that caps a single order's notional at
// maxPositionPct of account equity (e.g. 0.25 for 25%). A value of zero or
// one disables the check.
func NewRiskGuard(maxPositionPct float64) *RiskGuard {
	return &RiskGuard{maxPositionPct: decimal.NewFromFloat(maxPositionPct)}
}

// CheckOrder returns an error when the order's notional value exceeds the
// configured fraction of equity.
func (rg *RiskGuard) CheckOrder(req OrderRequest, price, equity decimal.Decimal) error {
	if rg.maxPositionPct.LessThanOrEqual(decimal.Zero) || rg.maxPositionPct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil
	}
	notional := req.Qty.Abs().Mul(price)
	limit := equity.Mul(rg.maxPositionPct)
	if notional.GreaterThan(limit) {
		return fmt.Errorf("order notional $%s for %s exceeds %s%% of equity ($%s limit)",
			notional.StringFixed(2), req.Symbol,
			rg.maxPositionPct.Mul(decimal.NewFromInt(100)).String(),
			limit.StringFixed(2))
	}
	return nil
}
