package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyAdjustment returns basePrice after adj is applied. An override without an
// override price, or an unknown adjustment type, leaves the price unchanged.
func ApplyAdjustment(basePrice decimal.Decimal, adj PriceAdjustment) decimal.Decimal {
	switch adj.Type {
	case AdjustmentPercentIncrease:
		return basePrice.Mul(decimal.NewFromInt(1).Add(adj.Value.Div(hundred)))
	case AdjustmentPercentDecrease:
		return basePrice.Mul(decimal.NewFromInt(1).Sub(adj.Value.Div(hundred)))
	case AdjustmentFixedIncrease:
		return basePrice.Add(adj.Value)
	case AdjustmentFixedDecrease:
		return basePrice.Sub(adj.Value)
	case AdjustmentOverride:
		if adj.OverridePrice != nil {
			return *adj.OverridePrice
		}
		return basePrice
	default:
		return basePrice
	}
}

// AdjustmentDelta returns the signed change ApplyAdjustment would make to basePrice.
func AdjustmentDelta(basePrice decimal.Decimal, adj PriceAdjustment) decimal.Decimal {
	return ApplyAdjustment(basePrice, adj).Sub(basePrice)
}
