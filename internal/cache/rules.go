package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/pricing/internal/log"
	"github.com/venuehub/pricing/internal/metrics"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
)

const ruleKeyPrefix = "pricing_rules:"

// DefaultRuleTTL is used when a RuleCache is built with a non-positive TTL
const DefaultRuleTTL = 2 * time.Minute

// RuleCache is a cache-aside wrapper around a rule repository.
// Redis failures fall through to the backing repository.
type RuleCache struct {
	cache *Cache
	next  repository.RuleRepository
	ttl   time.Duration
}

var _ repository.RuleRepository = (*RuleCache)(nil)

// NewRuleCache creates a rule cache in front of next
func NewRuleCache(cache *Cache, next repository.RuleRepository, ttl time.Duration) *RuleCache {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	return &RuleCache{cache: cache, next: next, ttl: ttl}
}

// RuleKey returns the cache key for a venue's rules
func RuleKey(venueID string) string {
	return ruleKeyPrefix + venueID
}

// ListByVenue returns cached rules, loading and caching them on a miss
func (rc *RuleCache) ListByVenue(ctx context.Context, venueID string) ([]pricing.PricingRule, error) {
	key := RuleKey(venueID)

	var rules []pricing.PricingRule
	err := rc.cache.Get(ctx, key, &rules)
	switch {
	case err == nil:
		metrics.RecordRuleCacheHit()
		if rules == nil {
			rules = []pricing.PricingRule{}
		}
		return rules, nil
	case errors.Is(err, ErrCacheMiss):
		metrics.RecordRuleCacheMiss()
	default:
		metrics.RecordRuleCacheMiss()
		metrics.RecordError("get", "rule_cache")
		log.Warn(ctx, "Rule cache read failed, using backing store",
			zap.String("venue_id", venueID), zap.Error(err))
	}

	rules, err = rc.next.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	if err := rc.cache.Set(ctx, key, rules, rc.ttl); err != nil {
		metrics.RecordError("set", "rule_cache")
		log.Warn(ctx, "Failed to cache rules",
			zap.String("venue_id", venueID), zap.Error(err))
	}

	return rules, nil
}

// Invalidate drops the cached rules of a venue
func (rc *RuleCache) Invalidate(ctx context.Context, venueID string) error {
	return rc.cache.Delete(ctx, RuleKey(venueID))
}
