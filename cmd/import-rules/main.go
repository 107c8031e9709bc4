package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/venuehub/pricing/internal/cache"
	"github.com/venuehub/pricing/internal/config"
	sharedlog "github.com/venuehub/pricing/internal/log"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
	"github.com/venuehub/pricing/internal/repository/file"
	"github.com/venuehub/pricing/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: import-rules <rules.yaml> [config.yaml]")
	}

	rulesPath := os.Args[1]
	configPath := "config.yaml"
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("postgres.dsn must be set to import rules")
	}

	// Initialize logger
	if err := sharedlog.Init(cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = sharedlog.L(context.Background()).Sync() }()

	// Read and validate the rule file before touching the database
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		log.Fatalf("Failed to read rule file: %v", err)
	}
	doc, err := file.Parse(data)
	if err != nil {
		log.Fatalf("Invalid rule file: %v", err)
	}

	ctx := context.Background()

	dbConfig := postgres.DefaultConfig()
	dbConfig.DSN = cfg.Postgres.DSN
	dbConfig.MaxConns = cfg.Postgres.MaxConns
	pool, err := postgres.NewPool(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}

	store := postgres.NewStore(pool)
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Quotes read through the Redis cache, so imported venues must be evicted
	var invalidator ruleInvalidator
	if cfg.Redis.Enabled {
		c, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer c.Close()
		invalidator = cache.NewRuleCache(c, store, cfg.Redis.TTL)
	}

	imported, err := importRules(ctx, store, invalidator, doc, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to import rules: %v", err)
	}

	fmt.Printf("Successfully imported %d rules for %d venues\n", imported, len(doc.Venues))
}

type ruleInvalidator interface {
	Invalidate(ctx context.Context, venueID string) error
}

// importRules upserts every rule of doc in file order. When invalidator is
// set, each imported venue's cached rules are dropped.
func importRules(ctx context.Context, store repository.RuleStore, invalidator ruleInvalidator, doc *file.Document, out io.Writer) (int, error) {
	venues := make([]string, 0, len(doc.Venues))
	for venueID := range doc.Venues {
		venues = append(venues, venueID)
	}
	sort.Strings(venues)

	imported := 0
	for _, venueID := range venues {
		for _, rule := range doc.Venues[venueID] {
			if err := store.Upsert(ctx, venueID, rule); err != nil {
				return imported, err
			}
			imported++
			fmt.Fprintf(out, "  %s/%s (%s, priority %d)%s\n",
				venueID, rule.ID, rule.Adjustment.Type, rule.Priority, statusSuffix(rule))
		}

		if invalidator != nil {
			if err := invalidator.Invalidate(ctx, venueID); err != nil {
				sharedlog.Warn(ctx, "Failed to invalidate cached rules",
					zap.String("venue_id", venueID), zap.Error(err))
			}
		}
	}
	return imported, nil
}

func statusSuffix(rule pricing.PricingRule) string {
	if rule.IsActive() {
		return ""
	}
	return " [inactive]"
}
