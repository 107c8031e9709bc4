package repository

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/venuehub/pricing/internal/pricing"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// RuleRepository supplies the pricing rules configured for a venue
type RuleRepository interface {
	// ListByVenue returns every rule of the venue, active or not, ordered by
	// priority. Rules of equal priority keep the order they were first
	// stored in. An unknown venue has no rules.
	ListByVenue(ctx context.Context, venueID string) ([]pricing.PricingRule, error)
}

// RuleStore is a RuleRepository that can also be edited
type RuleStore interface {
	RuleRepository

	// Upsert creates or replaces a rule of the venue, keyed by rule id.
	// A replaced rule keeps its original position among equal priorities.
	Upsert(ctx context.Context, venueID string, rule pricing.PricingRule) error

	// Delete removes a rule, returning ErrNotFound if it does not exist
	Delete(ctx context.Context, venueID, ruleID string) error
}

// SortRules orders rules by priority in place, keeping the relative order
// of equal priorities.
func SortRules(rules []pricing.PricingRule) {
	slices.SortStableFunc(rules, func(a, b pricing.PricingRule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
}
