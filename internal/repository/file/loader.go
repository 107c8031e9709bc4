package file

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/venuehub/pricing/internal/domain"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
	"github.com/venuehub/pricing/internal/repository/memory"
)

// Document is the layout of a rule file: rules keyed by venue id.
type Document struct {
	Venues map[string][]pricing.PricingRule `yaml:"venues"`
}

// Loader serves rules read from a YAML file.
type Loader struct {
	path  string
	store atomic.Pointer[memory.Store]
}

var _ repository.RuleRepository = (*Loader)(nil)

// Load reads and validates the rule file at path.
func Load(path string) (*Loader, error) {
	l := &Loader{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the file. On error the previously loaded rules are kept.
func (l *Loader) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to read rule file %s: %w", l.path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return fmt.Errorf("rule file %s: %w", l.path, err)
	}

	store := memory.NewStore()
	for venueID, rules := range doc.Venues {
		for _, rule := range rules {
			if err := store.Upsert(context.Background(), venueID, rule); err != nil {
				return err
			}
		}
	}
	l.store.Store(store)
	return nil
}

func (l *Loader) ListByVenue(ctx context.Context, venueID string) ([]pricing.PricingRule, error) {
	return l.store.Load().ListByVenue(ctx, venueID)
}

// Parse decodes and validates a rule document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewInvalidInputError("malformed rule document", err.Error())
	}

	for venueID, rules := range doc.Venues {
		seen := make(map[string]struct{}, len(rules))
		for i, rule := range rules {
			if err := ValidateRule(rule); err != nil {
				return nil, fmt.Errorf("venue %s rule #%d: %w", venueID, i, err)
			}
			if _, dup := seen[rule.ID]; dup {
				return nil, domain.NewInvalidInputError("duplicate rule id", fmt.Sprintf("venue %s: %s", venueID, rule.ID))
			}
			seen[rule.ID] = struct{}{}
		}
	}
	return &doc, nil
}

// ValidateRule checks a rule for values the engine cannot interpret.
func ValidateRule(rule pricing.PricingRule) error {
	if rule.ID == "" {
		return domain.NewInvalidInputError("rule id is required", "")
	}
	if rule.Status != pricing.RuleStatusActive && rule.Status != pricing.RuleStatusInactive {
		return domain.NewInvalidInputError("invalid rule status", fmt.Sprintf("%s: %q", rule.ID, rule.Status))
	}
	if !rule.Adjustment.Type.Valid() {
		return domain.NewInvalidInputError("invalid adjustment type", fmt.Sprintf("%s: %q", rule.ID, rule.Adjustment.Type))
	}

	cond := rule.Conditions
	for _, day := range cond.DaysOfWeek {
		if day < 0 || day > 6 {
			return domain.NewInvalidInputError("day of week out of range", fmt.Sprintf("%s: %d", rule.ID, day))
		}
	}
	for _, slot := range cond.TimeSlots {
		if !validClock(slot.Start) || !validClock(slot.End) {
			return domain.NewInvalidInputError("time slot must be HH:mm", fmt.Sprintf("%s: %s-%s", rule.ID, slot.Start, slot.End))
		}
	}
	if r := cond.DateRange; r != nil {
		if !validDate(r.Start) || !validDate(r.End) || r.Start > r.End {
			return domain.NewInvalidInputError("invalid date range", fmt.Sprintf("%s: %s..%s", rule.ID, r.Start, r.End))
		}
	}
	for _, d := range cond.SpecificDates {
		if !validDate(d) {
			return domain.NewInvalidInputError("specific date must be YYYY-MM-DD", fmt.Sprintf("%s: %s", rule.ID, d))
		}
	}
	return nil
}

// validClock requires the zero-padded form the matcher compares lexically.
// "24:00" is accepted as the end of the day.
func validClock(s string) bool {
	if s == "24:00" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
