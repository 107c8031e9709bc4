package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRule(id string, priority int, adj PriceAdjustment) PricingRule {
	return PricingRule{
		ID:         id,
		Name:       "rule " + id,
		Status:     RuleStatusActive,
		Priority:   priority,
		Adjustment: adj,
	}
}

func TestApplyRules_NoContextAppliesNothing(t *testing.T) {
	rules := []PricingRule{activeRule("a", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("20")})}

	got := ApplyRules(dec("100"), rules, nil)

	assertDecimal(t, "100", got.AdjustedPrice)
	assert.NotNil(t, got.AppliedRules)
	assert.Empty(t, got.AppliedRules)
}

func TestApplyRules_EmptyRules(t *testing.T) {
	got := ApplyRules(dec("100"), nil, &RuleMatchContext{})

	assertDecimal(t, "100", got.AdjustedPrice)
	assert.Empty(t, got.AppliedRules)
}

func TestApplyRules_PriorityOrderComposes(t *testing.T) {
	rules := []PricingRule{
		activeRule("fixed", 2, PriceAdjustment{Type: AdjustmentFixedDecrease, Value: dec("5")}),
		activeRule("percent", 1, PriceAdjustment{Type: AdjustmentPercentIncrease, Value: dec("10")}),
	}

	got := ApplyRules(dec("100"), rules, &RuleMatchContext{})

	assertDecimal(t, "105", got.AdjustedPrice)
	require.Len(t, got.AppliedRules, 2)
	assert.Equal(t, "percent", got.AppliedRules[0].RuleID)
	assertDecimal(t, "10", got.AppliedRules[0].Adjustment)
	assert.Equal(t, "fixed", got.AppliedRules[1].RuleID)
	assertDecimal(t, "-5", got.AppliedRules[1].Adjustment)
}

func TestApplyRules_DeltaUsesRunningPrice(t *testing.T) {
	rules := []PricingRule{
		activeRule("first", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("100")}),
		activeRule("second", 2, PriceAdjustment{Type: AdjustmentPercentIncrease, Value: dec("50")}),
	}

	got := ApplyRules(dec("100"), rules, &RuleMatchContext{})

	assertDecimal(t, "300", got.AdjustedPrice)
	require.Len(t, got.AppliedRules, 2)
	assertDecimal(t, "100", got.AppliedRules[1].Adjustment)
}

func TestApplyRules_EqualPrioritiesKeepInputOrder(t *testing.T) {
	override := dec("50")
	rules := []PricingRule{
		activeRule("c", 5, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("1")}),
		activeRule("a", 5, PriceAdjustment{Type: AdjustmentOverride, OverridePrice: &override}),
		activeRule("b", 5, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("2")}),
		activeRule("z", 0, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("3")}),
	}

	got := ApplyRules(dec("100"), rules, &RuleMatchContext{})

	ids := make([]string, 0, len(got.AppliedRules))
	for _, applied := range got.AppliedRules {
		ids = append(ids, applied.RuleID)
	}
	assert.Equal(t, []string{"z", "c", "a", "b"}, ids)
	assertDecimal(t, "52", got.AdjustedPrice)
}

func TestApplyRules_DoesNotReorderInput(t *testing.T) {
	rules := []PricingRule{
		activeRule("late", 9, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("1")}),
		activeRule("early", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("1")}),
	}

	ApplyRules(dec("100"), rules, &RuleMatchContext{})

	assert.Equal(t, "late", rules[0].ID)
	assert.Equal(t, "early", rules[1].ID)
}

func TestApplyRules_SkipsInactiveAndNonMatching(t *testing.T) {
	inactive := activeRule("off", 1, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("50")})
	inactive.Status = RuleStatusInactive

	weekdays := activeRule("weekdays", 2, PriceAdjustment{Type: AdjustmentFixedIncrease, Value: dec("25")})
	weekdays.Conditions.DaysOfWeek = []int{1, 2, 3, 4, 5}

	weekend := activeRule("weekend", 3, PriceAdjustment{Type: AdjustmentPercentIncrease, Value: dec("20")})
	weekend.Conditions.DaysOfWeek = []int{0, 6}

	got := ApplyRules(dec("100"), []PricingRule{inactive, weekdays, weekend}, &RuleMatchContext{DayOfWeek: intPtr(6)})

	assertDecimal(t, "120", got.AdjustedPrice)
	require.Len(t, got.AppliedRules, 1)
	assert.Equal(t, "weekend", got.AppliedRules[0].RuleID)
	assert.Equal(t, AdjustmentPercentIncrease, got.AppliedRules[0].AdjustmentType)
}

func TestApplyRules_ClampsAtZero(t *testing.T) {
	rules := []PricingRule{activeRule("big", 1, PriceAdjustment{Type: AdjustmentFixedDecrease, Value: dec("250")})}

	got := ApplyRules(dec("100"), rules, &RuleMatchContext{})

	assertDecimal(t, "0", got.AdjustedPrice)
	require.Len(t, got.AppliedRules, 1)
	assertDecimal(t, "-250", got.AppliedRules[0].Adjustment)
}
