package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the pricing service
type Config struct {
	AppName  string         `mapstructure:"app_name"`
	Log      LogConfig      `mapstructure:"log"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// PricingConfig holds venue-wide pricing defaults. Rates are percentages.
type PricingConfig struct {
	DefaultCurrency string  `mapstructure:"default_currency"`
	TaxRate         float64 `mapstructure:"tax_rate"`
	ServiceFeeRate  float64 `mapstructure:"service_fee_rate"`
	Timezone        string  `mapstructure:"timezone"`
}

// TaxRateDecimal returns the configured tax rate as a decimal.
func (c PricingConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRate)
}

// ServiceFeeRateDecimal returns the configured service fee rate as a decimal.
func (c PricingConfig) ServiceFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ServiceFeeRate)
}

// Location resolves the configured timezone.
func (c PricingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Rule sources
const (
	RuleSourceFile     = "file"
	RuleSourcePostgres = "postgres"
)

// RulesConfig selects where pricing rules are read from
type RulesConfig struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	DB       int           `mapstructure:"db"`
	Password string        `mapstructure:"password"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig holds audit event publishing configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRatio  float64 `mapstructure:"sampling_ratio"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	return unmarshal(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PRICING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "venue-pricing")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("pricing.default_currency", "USD")
	v.SetDefault("pricing.tax_rate", 0)
	v.SetDefault("pricing.service_fee_rate", 0)
	v.SetDefault("pricing.timezone", "UTC")
	v.SetDefault("rules.source", RuleSourceFile)
	v.SetDefault("rules.file", "rules.yaml")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.ttl", 2*time.Minute)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "pricing.quotes")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sampling_ratio", 1.0)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app_name is required")
	}
	if strings.TrimSpace(c.Pricing.DefaultCurrency) == "" {
		return fmt.Errorf("pricing.default_currency is required")
	}
	if _, err := c.Pricing.Location(); err != nil {
		return fmt.Errorf("pricing.timezone is invalid: %w", err)
	}
	switch c.Rules.Source {
	case RuleSourceFile:
		if c.Rules.File == "" {
			return fmt.Errorf("rules.file is required when rules.source is %q", RuleSourceFile)
		}
	case RuleSourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when rules.source is %q", RuleSourcePostgres)
		}
		if c.Postgres.MaxConns <= 0 {
			return fmt.Errorf("postgres.max_conns must be greater than 0")
		}
	default:
		return fmt.Errorf("rules.source must be %q or %q, got %q", RuleSourceFile, RuleSourcePostgres, c.Rules.Source)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
		return fmt.Errorf("tracing.sampling_ratio must be between 0 and 1")
	}
	return nil
}
