package funding

import "github.com/shopspring/decimal"

// Platform fee schedule. The fee is a step function: amounts at or below the
// threshold are fee-free, amounts strictly above it pay 5%, rounded to cents.
// Callers must not assume linearity across the threshold.
var (
	feeThreshold = decimal.NewFromInt(1000)
	feeRate      = decimal.NewFromFloat(0.05)
)

// Fee returns the platform fee for the given investment amount.
func Fee(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(feeThreshold) {
		return decimal.Zero
	}
	return amount.Mul(feeRate).Round(2)
}

// Total returns the full charge for an investment: amount plus platform fee.
func Total(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(Fee(amount))
}
