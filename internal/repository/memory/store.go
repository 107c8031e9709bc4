package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
)

// Store is an in-memory implementation of repository.RuleStore.
// Each venue keeps its rules in insertion order.
type Store struct {
	mu     sync.RWMutex
	venues map[string][]pricing.PricingRule
}

var _ repository.RuleStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{venues: make(map[string][]pricing.PricingRule)}
}

func (s *Store) ListByVenue(_ context.Context, venueID string) ([]pricing.PricingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pricing.PricingRule, len(s.venues[venueID]))
	copy(out, s.venues[venueID])
	repository.SortRules(out)
	return out, nil
}

// Upsert replaces an existing rule in place so it keeps its ordinal;
// new ids are appended.
func (s *Store) Upsert(_ context.Context, venueID string, rule pricing.PricingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules := s.venues[venueID]
	if i := indexOf(rules, rule.ID); i >= 0 {
		rules[i] = rule
		return nil
	}
	s.venues[venueID] = append(rules, rule)
	return nil
}

func (s *Store) Delete(_ context.Context, venueID, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules := s.venues[venueID]
	i := indexOf(rules, ruleID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.venues[venueID] = slices.Delete(rules, i, i+1)
	return nil
}

func indexOf(rules []pricing.PricingRule, id string) int {
	return slices.IndexFunc(rules, func(r pricing.PricingRule) bool { return r.ID == id })
}
