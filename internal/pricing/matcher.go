package pricing

import "slices"

// Matches reports whether a rule with the given conditions and targets applies
// to ctx. Checks run in a fixed order and stop at the first failure. A check
// whose context field is unknown does not block the match.
func Matches(cond PricingCondition, ctx RuleMatchContext, targetAssets, targetAssetTypes []string) bool {
	if len(targetAssets) > 0 && ctx.AssetID != "" {
		if !slices.Contains(targetAssets, ctx.AssetID) {
			return false
		}
	}

	if len(targetAssetTypes) > 0 && ctx.AssetType != "" {
		if !slices.Contains(targetAssetTypes, ctx.AssetType) {
			return false
		}
	}

	if len(cond.DaysOfWeek) > 0 && ctx.DayOfWeek != nil {
		if !slices.Contains(cond.DaysOfWeek, *ctx.DayOfWeek) {
			return false
		}
	}

	if len(cond.TimeSlots) > 0 && ctx.StartTime != "" {
		if !inAnySlot(cond.TimeSlots, ctx.StartTime) {
			return false
		}
	}

	// ISO dates compare correctly as strings.
	if cond.DateRange != nil && ctx.Date != "" {
		if ctx.Date < cond.DateRange.Start || ctx.Date > cond.DateRange.End {
			return false
		}
	}

	if len(cond.SpecificDates) > 0 && ctx.Date != "" {
		if !slices.Contains(cond.SpecificDates, ctx.Date) {
			return false
		}
	}

	if w := cond.BookingWindow; w != nil && ctx.HoursUntilBooking != nil {
		hours := *ctx.HoursUntilBooking
		if w.MinHoursBefore != nil && hours < *w.MinHoursBefore {
			return false
		}
		if w.MaxHoursBefore != nil && hours > *w.MaxHoursBefore {
			return false
		}
	}

	return true
}

// Matches reports whether r applies to ctx, ignoring its status.
func (r PricingRule) Matches(ctx RuleMatchContext) bool {
	return Matches(r.Conditions, ctx, r.TargetAssets, r.TargetAssetTypes)
}

// inAnySlot compares zero-padded "HH:mm" strings lexicographically.
func inAnySlot(slots []TimeSlot, start string) bool {
	for _, slot := range slots {
		if start >= slot.Start && start < slot.End {
			return true
		}
	}
	return false
}
