package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
)

func TestStore_UpsertListDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "b", Priority: 2, Status: pricing.RuleStatusActive}))
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "a", Priority: 2, Status: pricing.RuleStatusInactive}))
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "c", Priority: 1, Status: pricing.RuleStatusActive}))
	require.NoError(t, store.Upsert(ctx, "venue-2", pricing.PricingRule{ID: "x", Priority: 1}))

	rules, err := store.ListByVenue(ctx, "venue-1")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, []string{"c", "b", "a"}, ruleIDs(rules))

	// replace keeps a single entry per id
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "b", Priority: 0, Name: "renamed"}))
	rules, err = store.ListByVenue(ctx, "venue-1")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "renamed", rules[0].Name)

	require.NoError(t, store.Delete(ctx, "venue-1", "b"))
	assert.ErrorIs(t, store.Delete(ctx, "venue-1", "b"), repository.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "nowhere", "b"), repository.ErrNotFound)

	rules, err = store.ListByVenue(ctx, "venue-1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestStore_TiedPrioritiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: id, Priority: 1}))
	}
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "first", Priority: 0}))

	rules, err := store.ListByVenue(ctx, "venue-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "zeta", "alpha", "mid"}, ruleIDs(rules))

	// replacing a rule does not move it behind later inserts
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "zeta", Priority: 1, Name: "updated"}))
	require.NoError(t, store.Delete(ctx, "venue-1", "alpha"))
	require.NoError(t, store.Upsert(ctx, "venue-1", pricing.PricingRule{ID: "alpha", Priority: 1}))

	rules, err = store.ListByVenue(ctx, "venue-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "zeta", "mid", "alpha"}, ruleIDs(rules))
	assert.Equal(t, "updated", rules[1].Name)
}

func ruleIDs(rules []pricing.PricingRule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}

func TestStore_UnknownVenueHasNoRules(t *testing.T) {
	rules, err := NewStore().ListByVenue(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Upsert(ctx, "venue", pricing.PricingRule{ID: string(rune('a' + i%26)), Priority: i})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.ListByVenue(ctx, "venue")
		}()
	}
	wg.Wait()

	rules, err := store.ListByVenue(ctx, "venue")
	require.NoError(t, err)
	assert.Len(t, rules, 26)
}
