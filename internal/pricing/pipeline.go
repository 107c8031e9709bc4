package pricing

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// RuleResult is the outcome of running the rule pipeline over a price.
type RuleResult struct {
	AdjustedPrice decimal.Decimal
	AppliedRules  []AppliedRule
}

// ApplyRules runs the active rules over basePrice in priority order. Each
// matching rule adjusts the running price, so later rules see the result of
// earlier ones. Rules with equal priority keep their input order. Without a
// context no rule is applied. The adjusted price never drops below zero.
//
// The rules slice is not modified.
func ApplyRules(basePrice decimal.Decimal, rules []PricingRule, ctx *RuleMatchContext) RuleResult {
	applied := make([]AppliedRule, 0)
	if len(rules) == 0 || ctx == nil {
		return RuleResult{AdjustedPrice: basePrice, AppliedRules: applied}
	}

	active := make([]PricingRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive() {
			active = append(active, rule)
		}
	}
	slices.SortStableFunc(active, func(a, b PricingRule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	price := basePrice
	for _, rule := range active {
		if !rule.Matches(*ctx) {
			continue
		}
		delta := AdjustmentDelta(price, rule.Adjustment)
		price = ApplyAdjustment(price, rule.Adjustment)
		applied = append(applied, AppliedRule{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			AdjustmentType: rule.Adjustment.Type,
			Adjustment:     delta,
		})
	}

	if price.IsNegative() {
		price = decimal.Zero
	}

	return RuleResult{AdjustedPrice: price, AppliedRules: applied}
}
