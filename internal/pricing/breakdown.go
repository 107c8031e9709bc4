package pricing

import "github.com/shopspring/decimal"

// CalculateBookingPrice produces the full price breakdown for a booking.
//
// The order of operations is fixed: rules adjust the base price into the
// subtotal, the manual discount is taken off, and tax and service fee are
// both computed on the post-discount taxable amount. Tax is always added on
// top here; use CalculateTax for inclusive splits.
//
// Every monetary field is rounded to the currency once, when it is finalised.
// The function is pure and safe for concurrent use.
func CalculateBookingPrice(input PriceCalculationInput) PriceBreakdown {
	in := input.normalized()
	currency := in.Currency

	result := ApplyRules(in.BasePrice, in.Rules, in.Context)
	subtotal := Round(result.AdjustedPrice, currency)
	discount := Round(in.Discount, currency)

	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	taxable = Round(taxable, currency)

	taxAmount := Round(taxable.Mul(in.TaxRate).Div(hundred), currency)
	serviceFee := Round(taxable.Mul(in.ServiceFeeRate).Div(hundred), currency)
	total := Round(taxable.Add(taxAmount).Add(serviceFee), currency)

	applied := make([]AppliedRule, len(result.AppliedRules))
	for i, rule := range result.AppliedRules {
		rule.Adjustment = Round(rule.Adjustment, currency)
		applied[i] = rule
	}

	return PriceBreakdown{
		BasePrice:      in.BasePrice,
		Subtotal:       subtotal,
		Discount:       discount,
		DiscountLabel:  in.DiscountLabel,
		TaxableAmount:  taxable,
		TaxRate:        in.TaxRate,
		TaxAmount:      taxAmount,
		ServiceFeeRate: in.ServiceFeeRate,
		ServiceFee:     serviceFee,
		TotalPrice:     total,
		Currency:       currency,
		AppliedRules:   applied,
	}
}
