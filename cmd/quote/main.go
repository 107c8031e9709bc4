package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venuehub/pricing/internal/cache"
	"github.com/venuehub/pricing/internal/config"
	"github.com/venuehub/pricing/internal/events"
	"github.com/venuehub/pricing/internal/log"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/quote"
	"github.com/venuehub/pricing/internal/repository"
	"github.com/venuehub/pricing/internal/repository/file"
	"github.com/venuehub/pricing/internal/repository/postgres"
	"github.com/venuehub/pricing/internal/tracing"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "quote: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	request    string
	taxPreview string
	taxRate    string
	mode       string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to config.yaml (environment only when empty)")
	fs.StringVar(&opts.request, "request", "-", "path to a JSON quote request, - for stdin")
	fs.StringVar(&opts.taxPreview, "tax-preview", "", "print the tax split of this amount instead of quoting")
	fs.StringVar(&opts.taxRate, "tax-rate", "", "tax rate for -tax-preview, defaults to pricing.tax_rate")
	fs.StringVar(&opts.mode, "mode", string(pricing.TaxExclusive), "tax mode for -tax-preview: exclusive or inclusive")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	// stdout carries the JSON result
	if err := initLogger(cfg.Log); err != nil {
		return err
	}
	ctx = log.WithRequestID(ctx, uuid.NewString())
	logger := log.L(ctx)
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Pricing.Location()
	if err != nil {
		return err
	}
	defaults := quote.Defaults{
		Currency:       cfg.Pricing.DefaultCurrency,
		TaxRate:        cfg.Pricing.TaxRateDecimal(),
		ServiceFeeRate: cfg.Pricing.ServiceFeeRateDecimal(),
		Location:       loc,
	}

	if opts.taxPreview != "" {
		return preview(opts, defaults, stdout)
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(tracing.Config{
			ServiceName:    cfg.AppName,
			ServiceVersion: "1.0.0",
			Environment:    "cli",
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SamplingRatio:  cfg.Tracing.SamplingRatio,
		}, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	rules, closeRules, err := buildRuleRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRules()

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	req, err := readRequest(opts.request, stdin)
	if err != nil {
		return err
	}

	svc := quote.NewService(rules, publisher, defaults)
	q, err := svc.Quote(ctx, req)
	if err != nil {
		return err
	}

	return writeJSON(stdout, q)
}

func initLogger(cfg config.LogConfig) error {
	if cfg.Development {
		log.SetGlobal(log.NewDevelopment().Logger)
		return nil
	}
	if err := log.Init(cfg.Level, "stderr"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func preview(opts options, defaults quote.Defaults, stdout io.Writer) error {
	amount, err := decimal.NewFromString(opts.taxPreview)
	if err != nil {
		return fmt.Errorf("invalid -tax-preview amount %q: %w", opts.taxPreview, err)
	}

	rate := defaults.TaxRate
	if opts.taxRate != "" {
		if rate, err = decimal.NewFromString(opts.taxRate); err != nil {
			return fmt.Errorf("invalid -tax-rate %q: %w", opts.taxRate, err)
		}
	}

	mode := pricing.TaxMode(opts.mode)
	if mode != pricing.TaxExclusive && mode != pricing.TaxInclusive {
		return fmt.Errorf("invalid -mode %q", opts.mode)
	}

	svc := quote.NewService(nil, nil, defaults)
	return writeJSON(stdout, svc.Preview(amount, rate, mode, defaults.Currency))
}

func buildRuleRepository(ctx context.Context, cfg *config.Config) (repository.RuleRepository, func(), error) {
	var (
		repo    repository.RuleRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Rules.Source {
	case config.RuleSourcePostgres:
		dbConfig := postgres.DefaultConfig()
		dbConfig.DSN = cfg.Postgres.DSN
		dbConfig.MaxConns = cfg.Postgres.MaxConns
		pool, err := postgres.NewPool(ctx, dbConfig)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(pool)
		closers = append(closers, func() { _ = store.Close() })
		repo = store
	default:
		loader, err := file.Load(cfg.Rules.File)
		if err != nil {
			return nil, nil, err
		}
		repo = loader
	}

	if cfg.Redis.Enabled {
		c, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = c.Close() })
		repo = cache.NewRuleCache(c, repo, cfg.Redis.TTL)
	}

	return repo, closeAll, nil
}

func buildPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return events.NoopPublisher{}, nil
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
}

func readRequest(path string, stdin io.Reader) (quote.Request, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return quote.Request{}, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req quote.Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return quote.Request{}, errors.New("empty quote request")
		}
		return quote.Request{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
