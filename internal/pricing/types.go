package pricing

import "github.com/shopspring/decimal"

// AdjustmentType identifies how a PriceAdjustment changes a price.
type AdjustmentType string

const (
	AdjustmentPercentIncrease AdjustmentType = "percent_increase"
	AdjustmentPercentDecrease AdjustmentType = "percent_decrease"
	AdjustmentFixedIncrease   AdjustmentType = "fixed_increase"
	AdjustmentFixedDecrease   AdjustmentType = "fixed_decrease"
	AdjustmentOverride        AdjustmentType = "override"
)

// Valid reports whether t is one of the known adjustment types.
func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentPercentIncrease, AdjustmentPercentDecrease,
		AdjustmentFixedIncrease, AdjustmentFixedDecrease, AdjustmentOverride:
		return true
	}
	return false
}

// PriceAdjustment is one atomic price change. OverridePrice is only read for
// AdjustmentOverride.
type PriceAdjustment struct {
	Type          AdjustmentType   `json:"type" yaml:"type"`
	Value         decimal.Decimal  `json:"value" yaml:"value"`
	OverridePrice *decimal.Decimal `json:"override_price,omitempty" yaml:"override_price,omitempty"`
}

// TimeSlot is a half-open [Start, End) window in "HH:mm".
type TimeSlot struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DateRange is an inclusive range of ISO dates (2006-01-02).
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// BookingWindow bounds how far ahead of the booking start a rule applies.
// Either bound may be nil.
type BookingWindow struct {
	MinHoursBefore *float64 `json:"min_hours_before,omitempty" yaml:"min_hours_before,omitempty"`
	MaxHoursBefore *float64 `json:"max_hours_before,omitempty" yaml:"max_hours_before,omitempty"`
}

// PricingCondition holds the optional predicates of a rule. Every predicate that
// is set must hold for the rule to match.
type PricingCondition struct {
	DaysOfWeek    []int          `json:"days_of_week,omitempty" yaml:"days_of_week,omitempty"`
	TimeSlots     []TimeSlot     `json:"time_slots,omitempty" yaml:"time_slots,omitempty"`
	DateRange     *DateRange     `json:"date_range,omitempty" yaml:"date_range,omitempty"`
	SpecificDates []string       `json:"specific_dates,omitempty" yaml:"specific_dates,omitempty"`
	BookingWindow *BookingWindow `json:"booking_window,omitempty" yaml:"booking_window,omitempty"`
}

// RuleStatus is the lifecycle state of a PricingRule.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// PricingRule is a conditional price adjustment configured for a venue.
// Lower Priority values are applied first.
type PricingRule struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	Status           RuleStatus       `json:"status" yaml:"status"`
	Priority         int              `json:"priority" yaml:"priority"`
	Conditions       PricingCondition `json:"conditions" yaml:"conditions"`
	Adjustment       PriceAdjustment  `json:"adjustment" yaml:"adjustment"`
	TargetAssets     []string         `json:"target_assets,omitempty" yaml:"target_assets,omitempty"`
	TargetAssetTypes []string         `json:"target_asset_types,omitempty" yaml:"target_asset_types,omitempty"`
}

// IsActive reports whether the rule takes part in pricing.
func (r PricingRule) IsActive() bool {
	return r.Status == RuleStatusActive
}

// RuleMatchContext carries the booking facts rules are evaluated against.
// Empty strings and nil pointers mean the fact is unknown.
type RuleMatchContext struct {
	Date              string   `json:"date,omitempty"`
	StartTime         string   `json:"start_time,omitempty"`
	DayOfWeek         *int     `json:"day_of_week,omitempty"`
	AssetID           string   `json:"asset_id,omitempty"`
	AssetType         string   `json:"asset_type,omitempty"`
	HoursUntilBooking *float64 `json:"hours_until_booking,omitempty"`
}

// AppliedRule records a rule that fired, with the signed change it made.
type AppliedRule struct {
	RuleID         string          `json:"rule_id"`
	RuleName       string          `json:"rule_name"`
	AdjustmentType AdjustmentType  `json:"adjustment_type"`
	Adjustment     decimal.Decimal `json:"adjustment"`
}

// PriceBreakdown is the itemised result of CalculateBookingPrice.
type PriceBreakdown struct {
	BasePrice      decimal.Decimal `json:"base_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountLabel  string          `json:"discount_label,omitempty"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ServiceFeeRate decimal.Decimal `json:"service_fee_rate"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Currency       string          `json:"currency"`
	AppliedRules   []AppliedRule   `json:"applied_rules"`
}
