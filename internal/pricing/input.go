package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceCalculationInput is the input to CalculateBookingPrice.
//
// The zero value of every optional field is its default: TaxRate,
// ServiceFeeRate and Discount are 0, and nil Rules or a nil Context mean no
// rule is applied. Rates are percentages (5 means 5%).
type PriceCalculationInput struct {
	BasePrice      decimal.Decimal   `json:"base_price"`
	Currency       string            `json:"currency"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	ServiceFeeRate decimal.Decimal   `json:"service_fee_rate"`
	Discount       decimal.Decimal   `json:"discount"`
	DiscountLabel  string            `json:"discount_label,omitempty"`
	Rules          []PricingRule     `json:"rules,omitempty"`
	Context        *RuleMatchContext `json:"context,omitempty"`
}

// InputOption sets an optional field of a PriceCalculationInput.
type InputOption func(*PriceCalculationInput)

// NewInput builds an input for basePrice in currency with the given options applied.
func NewInput(basePrice decimal.Decimal, currency string, opts ...InputOption) PriceCalculationInput {
	in := PriceCalculationInput{BasePrice: basePrice, Currency: currency}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func WithTaxRate(rate decimal.Decimal) InputOption {
	return func(in *PriceCalculationInput) { in.TaxRate = rate }
}

func WithServiceFeeRate(rate decimal.Decimal) InputOption {
	return func(in *PriceCalculationInput) { in.ServiceFeeRate = rate }
}

// WithDiscount sets a manual discount amount and the label shown for it.
func WithDiscount(amount decimal.Decimal, label string) InputOption {
	return func(in *PriceCalculationInput) {
		in.Discount = amount
		in.DiscountLabel = label
	}
}

func WithRules(rules []PricingRule) InputOption {
	return func(in *PriceCalculationInput) { in.Rules = rules }
}

func WithContext(ctx RuleMatchContext) InputOption {
	return func(in *PriceCalculationInput) { in.Context = &ctx }
}

// normalized returns a copy with the currency code canonicalised.
func (in PriceCalculationInput) normalized() PriceCalculationInput {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	return in
}
