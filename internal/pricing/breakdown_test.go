package pricing

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBookingPrice_NoRulesNoTax(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("100"), "USD"))

	assertDecimal(t, "100", got.BasePrice)
	assertDecimal(t, "100", got.Subtotal)
	assertDecimal(t, "0", got.Discount)
	assertDecimal(t, "100", got.TaxableAmount)
	assertDecimal(t, "0", got.TaxAmount)
	assertDecimal(t, "0", got.ServiceFee)
	assertDecimal(t, "100", got.TotalPrice)
	assert.Equal(t, "USD", got.Currency)
	assert.NotNil(t, got.AppliedRules)
	assert.Empty(t, got.AppliedRules)
}

func TestCalculateBookingPrice_TaxAndServiceFee(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("100"), "USD",
		WithTaxRate(dec("5")),
		WithServiceFeeRate(dec("10")),
	))

	assertDecimal(t, "100", got.TaxableAmount)
	assertDecimal(t, "5", got.TaxAmount)
	assertDecimal(t, "10", got.ServiceFee)
	assertDecimal(t, "115", got.TotalPrice)
	assertDecimal(t, "5", got.TaxRate)
	assertDecimal(t, "10", got.ServiceFeeRate)
}

func TestCalculateBookingPrice_UnconditionalRule(t *testing.T) {
	rules := []PricingRule{activeRule("peak", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("20")})}

	got := CalculateBookingPrice(NewInput(dec("100"), "USD", WithRules(rules), WithContext(RuleMatchContext{})))

	assertDecimal(t, "120", got.Subtotal)
	require.Len(t, got.AppliedRules, 1)
	assertDecimal(t, "20", got.AppliedRules[0].Adjustment)
	assert.Equal(t, "rule peak", got.AppliedRules[0].RuleName)
}

func TestCalculateBookingPrice_TwoRulesInPriorityOrder(t *testing.T) {
	rules := []PricingRule{
		activeRule("r2", 2, PriceAdjustment{Type: AdjustmentFixedDecrease, Value: dec("5")}),
		activeRule("r1", 1, PriceAdjustment{Type: AdjustmentPercentIncrease, Value: dec("10")}),
	}

	got := CalculateBookingPrice(NewInput(dec("100"), "USD", WithRules(rules), WithContext(RuleMatchContext{})))

	assertDecimal(t, "105", got.Subtotal)
	require.Len(t, got.AppliedRules, 2)
	assert.Equal(t, "r1", got.AppliedRules[0].RuleID)
	assert.Equal(t, "r2", got.AppliedRules[1].RuleID)
}

func TestCalculateBookingPrice_RulesIgnoredWithoutContext(t *testing.T) {
	rules := []PricingRule{activeRule("peak", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("20")})}

	got := CalculateBookingPrice(NewInput(dec("100"), "USD", WithRules(rules)))

	assertDecimal(t, "100", got.Subtotal)
	assert.Empty(t, got.AppliedRules)
}

func TestCalculateBookingPrice_DiscountBeforeTax(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("200"), "USD",
		WithDiscount(dec("50"), "Member"),
		WithTaxRate(dec("10")),
		WithServiceFeeRate(dec("2")),
	))

	assertDecimal(t, "200", got.Subtotal)
	assertDecimal(t, "50", got.Discount)
	assert.Equal(t, "Member", got.DiscountLabel)
	assertDecimal(t, "150", got.TaxableAmount)
	assertDecimal(t, "15", got.TaxAmount)
	assertDecimal(t, "3", got.ServiceFee)
	assertDecimal(t, "168", got.TotalPrice)
}

func TestCalculateBookingPrice_DiscountLargerThanSubtotal(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("50"), "USD",
		WithDiscount(dec("80"), "Voucher"),
		WithTaxRate(dec("10")),
	))

	assertDecimal(t, "0", got.TaxableAmount)
	assertDecimal(t, "0", got.TaxAmount)
	assertDecimal(t, "0", got.TotalPrice)
}

func TestCalculateBookingPrice_RoundsEachFieldToCurrency(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("33.333"), "usd",
		WithTaxRate(dec("7.5")),
		WithServiceFeeRate(dec("10")),
	))

	assert.Equal(t, "USD", got.Currency)
	assertDecimal(t, "33.333", got.BasePrice)
	assertDecimal(t, "33.33", got.Subtotal)
	assertDecimal(t, "2.5", got.TaxAmount)
	assertDecimal(t, "3.33", got.ServiceFee)
	assertDecimal(t, "39.16", got.TotalPrice)
}

func TestCalculateBookingPrice_ZeroDecimalCurrency(t *testing.T) {
	rules := []PricingRule{activeRule("evening", 1, PriceAdjustment{Type: AdjustmentPercentIncrease, Value: dec("12.5")})}

	got := CalculateBookingPrice(NewInput(dec("1999"), "JPY",
		WithRules(rules),
		WithContext(RuleMatchContext{}),
		WithTaxRate(dec("10")),
	))

	// 1999 * 1.125 = 2248.875
	assertDecimal(t, "2249", got.Subtotal)
	assertDecimal(t, "250", got.AppliedRules[0].Adjustment)
	assertDecimal(t, "225", got.TaxAmount)
	assertDecimal(t, "2474", got.TotalPrice)
}

func TestCalculateBookingPrice_NegativeTaxRateIsAccepted(t *testing.T) {
	got := CalculateBookingPrice(NewInput(dec("100"), "USD", WithTaxRate(dec("-10"))))

	assertDecimal(t, "-10", got.TaxAmount)
	assertDecimal(t, "90", got.TotalPrice)
}

func TestCalculateBookingPrice_Deterministic(t *testing.T) {
	rules := []PricingRule{
		activeRule("a", 2, PriceAdjustment{Type: AdjustmentPercentDecrease, Value: dec("7")}),
		activeRule("b", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("3.33")}),
	}
	in := NewInput(dec("87.65"), "EUR",
		WithRules(rules),
		WithContext(RuleMatchContext{Date: "2024-01-01"}),
		WithTaxRate(dec("21")),
		WithServiceFeeRate(dec("3")),
		WithDiscount(dec("4.99"), "Promo"),
	)

	first, err := json.Marshal(CalculateBookingPrice(in))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		next, err := json.Marshal(CalculateBookingPrice(in))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}

func TestCalculateBookingPrice_Properties(t *testing.T) {
	bases := []string{"0", "0.01", "19.99", "100", "1234.567"}
	discounts := []string{"0", "5", "15.5", "5000"}
	rates := []string{"0", "5", "8.875", "20"}
	currencies := []string{"USD", "JPY", "KWD"}

	for _, b := range bases {
		for _, d := range discounts {
			for _, r := range rates {
				for _, c := range currencies {
					name := fmt.Sprintf("%s/%s/%s/%s", b, d, r, c)
					got := CalculateBookingPrice(NewInput(dec(b), c,
						WithDiscount(dec(d), ""),
						WithTaxRate(dec(r)),
						WithServiceFeeRate(dec(r)),
					))

					assert.True(t, got.Subtotal.Equal(Round(dec(b), c)), name)

					wantTaxable := got.Subtotal.Sub(got.Discount)
					if wantTaxable.IsNegative() {
						wantTaxable = decimal.Zero
					}
					assert.True(t, got.TaxableAmount.Equal(wantTaxable), name)

					sum := got.TaxableAmount.Add(got.TaxAmount).Add(got.ServiceFee)
					assert.True(t, got.TotalPrice.Equal(sum), name)

					for _, v := range []decimal.Decimal{got.Subtotal, got.Discount, got.TaxableAmount, got.TaxAmount, got.ServiceFee, got.TotalPrice} {
						assert.True(t, v.Equal(Round(v, c)), name)
					}
				}
			}
		}
	}
}

func TestNewInput_Defaults(t *testing.T) {
	in := NewInput(dec("10"), "USD")

	assert.True(t, in.TaxRate.IsZero())
	assert.True(t, in.ServiceFeeRate.IsZero())
	assert.True(t, in.Discount.IsZero())
	assert.Empty(t, in.DiscountLabel)
	assert.Nil(t, in.Rules)
	assert.Nil(t, in.Context)
}

func TestCalculateBookingPrice_ZeroValueInput(t *testing.T) {
	got := CalculateBookingPrice(PriceCalculationInput{})

	assertDecimal(t, "0", got.TotalPrice)
	assert.Equal(t, "", got.Currency)
	assert.NotNil(t, got.AppliedRules)
}
