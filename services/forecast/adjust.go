package forecast

import "github.com/shopspring/decimal"

var (
	highMarginThreshold = decimal.NewFromFloat(0.6)
	midMarginThreshold  = decimal.NewFromFloat(0.3)

	highMarginFactor = decimal.NewFromFloat(1.2)
	midMarginFactor  = decimal.NewFromFloat(1.1)
)

// MarginFactor maps a gross-margin ratio to its demand-push multiplier.
// High-margin SKUs get boosted, low-margin ones pass through unchanged.
func MarginFactor(margin decimal.Decimal) decimal.Decimal {
	switch {
	case margin.GreaterThan(highMarginThreshold):
		return highMarginFactor
	case margin.GreaterThan(midMarginThreshold):
		return midMarginFactor
	default:
		return decimal.NewFromInt(1)
	}
}

// AdjustMargin applies the margin tier to a base forecast and rounds to a
// non-negative integer. A missing margin zeroes the row rather than
// guessing a tier.
func AdjustMargin(base float64, margin decimal.Decimal, hasMargin bool) int {
	if !hasMargin {
		return 0
	}
	adjusted := decimal.NewFromFloat(base).Mul(MarginFactor(margin))
	out := int(adjusted.Round(0).IntPart())
	if out < 0 {
		return 0
	}
	return out
}
