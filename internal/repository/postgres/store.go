package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuehub/pricing/internal/log"
	"github.com/venuehub/pricing/internal/metrics"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
	"github.com/venuehub/pricing/internal/retry"
)

// Schema creates the pricing_rules table used by Store. ordinal records
// insertion order and breaks ties between equal priorities.
const Schema = `
CREATE TABLE IF NOT EXISTS pricing_rules (
    venue_id           TEXT        NOT NULL,
    id                 TEXT        NOT NULL,
    ordinal            BIGSERIAL,
    name               TEXT        NOT NULL DEFAULT '',
    status             TEXT        NOT NULL,
    priority           INTEGER     NOT NULL DEFAULT 0,
    conditions         JSONB       NOT NULL DEFAULT '{}'::jsonb,
    adjustment         JSONB       NOT NULL,
    target_assets      TEXT[],
    target_asset_types TEXT[],
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (venue_id, id)
);
ALTER TABLE pricing_rules ADD COLUMN IF NOT EXISTS ordinal BIGSERIAL`

const listRulesSQL = `
SELECT id, name, status, priority, conditions, adjustment, target_assets, target_asset_types
FROM pricing_rules
WHERE venue_id = $1
ORDER BY priority, ordinal`

const upsertRuleSQL = `
INSERT INTO pricing_rules (venue_id, id, name, status, priority, conditions, adjustment, target_assets, target_asset_types, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (venue_id, id) DO UPDATE SET
    name = EXCLUDED.name,
    status = EXCLUDED.status,
    priority = EXCLUDED.priority,
    conditions = EXCLUDED.conditions,
    adjustment = EXCLUDED.adjustment,
    target_assets = EXCLUDED.target_assets,
    target_asset_types = EXCLUDED.target_asset_types,
    updated_at = now()`

const deleteRuleSQL = `DELETE FROM pricing_rules WHERE venue_id = $1 AND id = $2`

// Store represents the PostgreSQL rule store
type Store struct {
	db    *pgxpool.Pool
	retry retry.Config
}

var _ repository.RuleStore = (*Store)(nil)

// NewStore creates a store on an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, retry: retry.DefaultConfig()}
}

// EnsureSchema creates the rules table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create pricing_rules table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ListByVenue retrieves all rules of a venue. Transient connection
// failures are retried.
func (s *Store) ListByVenue(ctx context.Context, venueID string) ([]pricing.PricingRule, error) {
	start := time.Now()
	defer func() { metrics.RecordRuleStoreQuery("list", time.Since(start)) }()

	var rules []pricing.PricingRule
	err := retry.Do(ctx, s.retry, log.L(ctx), func(ctx context.Context) error {
		var err error
		rules, err = s.listByVenue(ctx, venueID)
		return err
	})
	if err != nil {
		metrics.RecordError("query", "postgres")
		return nil, err
	}
	return rules, nil
}

func (s *Store) listByVenue(ctx context.Context, venueID string) ([]pricing.PricingRule, error) {
	rows, err := s.db.Query(ctx, listRulesSQL, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules for venue %s: %w", venueID, err)
	}
	defer rows.Close()

	rules := make([]pricing.PricingRule, 0)
	for rows.Next() {
		var row ruleRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Status, &row.Priority,
			&row.Conditions, &row.Adjustment, &row.TargetAssets, &row.TargetAssetTypes); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule, err := row.decode()
		if err != nil {
			metrics.RecordError("decode", "postgres")
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// Upsert creates or replaces a rule
func (s *Store) Upsert(ctx context.Context, venueID string, rule pricing.PricingRule) error {
	start := time.Now()
	defer func() { metrics.RecordRuleStoreQuery("upsert", time.Since(start)) }()

	row, err := encodeRule(rule)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, upsertRuleSQL, venueID, row.ID, row.Name, row.Status, row.Priority,
		row.Conditions, row.Adjustment, row.TargetAssets, row.TargetAssetTypes)
	if err != nil {
		metrics.RecordError("query", "postgres")
		return fmt.Errorf("failed to upsert rule %s: %w", rule.ID, err)
	}
	return nil
}

// Delete removes a rule
func (s *Store) Delete(ctx context.Context, venueID, ruleID string) error {
	start := time.Now()
	defer func() { metrics.RecordRuleStoreQuery("delete", time.Since(start)) }()

	tag, err := s.db.Exec(ctx, deleteRuleSQL, venueID, ruleID)
	if err != nil {
		metrics.RecordError("query", "postgres")
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ruleRow mirrors a pricing_rules row; JSONB columns stay raw until decoded.
type ruleRow struct {
	ID               string
	Name             string
	Status           string
	Priority         int
	Conditions       []byte
	Adjustment       []byte
	TargetAssets     []string
	TargetAssetTypes []string
}

func (r ruleRow) decode() (pricing.PricingRule, error) {
	rule := pricing.PricingRule{
		ID:               r.ID,
		Name:             r.Name,
		Status:           pricing.RuleStatus(r.Status),
		Priority:         r.Priority,
		TargetAssets:     r.TargetAssets,
		TargetAssetTypes: r.TargetAssetTypes,
	}
	if len(r.Conditions) > 0 {
		if err := json.Unmarshal(r.Conditions, &rule.Conditions); err != nil {
			return pricing.PricingRule{}, fmt.Errorf("rule %s: invalid conditions: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal(r.Adjustment, &rule.Adjustment); err != nil {
		return pricing.PricingRule{}, fmt.Errorf("rule %s: invalid adjustment: %w", r.ID, err)
	}
	return rule, nil
}

func encodeRule(rule pricing.PricingRule) (ruleRow, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to marshal conditions: %w", err)
	}
	adjustment, err := json.Marshal(rule.Adjustment)
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to marshal adjustment: %w", err)
	}
	return ruleRow{
		ID:               rule.ID,
		Name:             rule.Name,
		Status:           string(rule.Status),
		Priority:         rule.Priority,
		Conditions:       conditions,
		Adjustment:       adjustment,
		TargetAssets:     rule.TargetAssets,
		TargetAssetTypes: rule.TargetAssetTypes,
	}, nil
}
