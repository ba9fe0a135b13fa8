package fairness

import "github.com/shopspring/decimal"

// CalculateReferralCommission returns floor(prizeAmount * commissionPercent / 100).
// Commissions are paid in whole token units and never round up.
// Negative results are clamped to zero.
func CalculateReferralCommission(prizeAmount, commissionPercent decimal.Decimal) decimal.Decimal {
	c := prizeAmount.Mul(commissionPercent).Shift(-2).Floor()
	if c.IsNegative() {
		return decimal.Zero
	}
	return c
}
