package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/venuehub/pricing/internal/domain"
	"github.com/venuehub/pricing/internal/events"
	"github.com/venuehub/pricing/internal/log"
	"github.com/venuehub/pricing/internal/metrics"
	"github.com/venuehub/pricing/internal/pricing"
	"github.com/venuehub/pricing/internal/repository"
	"github.com/venuehub/pricing/internal/tracing"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Request asks for the price of one booking
type Request struct {
	VenueID        string           `json:"venue_id"`
	AssetID        string           `json:"asset_id,omitempty"`
	AssetType      string           `json:"asset_type,omitempty"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	Currency       string           `json:"currency,omitempty"`
	StartsAt       time.Time        `json:"starts_at"`
	Discount       decimal.Decimal  `json:"discount"`
	DiscountLabel  string           `json:"discount_label,omitempty"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	ServiceFeeRate *decimal.Decimal `json:"service_fee_rate,omitempty"`
}

// Quote is a priced booking
type Quote struct {
	ID        uuid.UUID              `json:"id"`
	VenueID   string                 `json:"venue_id"`
	AssetID   string                 `json:"asset_id,omitempty"`
	QuotedAt  time.Time              `json:"quoted_at"`
	Breakdown pricing.PriceBreakdown `json:"breakdown"`
}

// Defaults are applied when a request leaves a field unset
type Defaults struct {
	Currency       string
	TaxRate        decimal.Decimal
	ServiceFeeRate decimal.Decimal
	Location       *time.Location
}

// Service prices bookings against a venue's rule catalog
type Service struct {
	rules     repository.RuleRepository
	publisher events.Publisher
	defaults  Defaults
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for quoted_at and booking lead time
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new quote service
func NewService(rules repository.RuleRepository, publisher events.Publisher, defaults Defaults, opts ...Option) *Service {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &Service{
		rules:     rules,
		publisher: publisher,
		defaults:  defaults,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote prices a booking request
func (s *Service) Quote(ctx context.Context, req Request) (*Quote, error) {
	start := time.Now()
	ctx = log.WithVenueID(ctx, req.VenueID)
	ctx, span := tracing.StartSpan(ctx, "quote.Quote",
		attribute.String("venue_id", req.VenueID),
		attribute.String("asset_id", req.AssetID))
	defer span.End()
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		ctx = log.WithTraceID(ctx, traceID)
	}

	// Rejected requests are labelled with the default currency
	if err := validate(req); err != nil {
		metrics.RecordQuote(s.defaults.Currency, "invalid", 0, time.Since(start))
		tracing.RecordError(ctx, err)
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaults.Currency
	}

	rules, err := s.rules.ListByVenue(ctx, req.VenueID)
	if err != nil {
		metrics.RecordQuote(currency, "error", 0, time.Since(start))
		metrics.RecordError("rule_lookup", "quote")
		tracing.RecordError(ctx, err)
		log.Error(ctx, "Failed to load pricing rules", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.NewInternalError("failed to load pricing rules"), err)
	}

	now := s.now()
	input := pricing.NewInput(req.BasePrice, currency,
		pricing.WithTaxRate(valueOr(req.TaxRate, s.defaults.TaxRate)),
		pricing.WithServiceFeeRate(valueOr(req.ServiceFeeRate, s.defaults.ServiceFeeRate)),
		pricing.WithDiscount(req.Discount, req.DiscountLabel),
		pricing.WithRules(rules),
		pricing.WithContext(s.matchContext(req, now)),
	)
	breakdown := pricing.CalculateBookingPrice(input)

	q := &Quote{
		ID:        uuid.New(),
		VenueID:   req.VenueID,
		AssetID:   req.AssetID,
		QuotedAt:  now.UTC(),
		Breakdown: breakdown,
	}
	ctx = log.WithQuoteID(ctx, q.ID.String())

	total, _ := breakdown.TotalPrice.Float64()
	metrics.RecordQuote(breakdown.Currency, "ok", total, time.Since(start))
	for _, applied := range breakdown.AppliedRules {
		metrics.RecordRuleApplied(string(applied.AdjustmentType))
	}
	tracing.SetAttributes(ctx,
		attribute.String("quote_id", q.ID.String()),
		attribute.Int("rules_considered", len(rules)),
		attribute.Int("rules_applied", len(breakdown.AppliedRules)),
		attribute.String("total_price", breakdown.TotalPrice.String()))

	s.publish(ctx, q)

	log.Info(ctx, "Quote calculated",
		zap.String("asset_id", req.AssetID),
		zap.String("currency", breakdown.Currency),
		zap.String("total_price", breakdown.TotalPrice.String()),
		zap.Int("rules_applied", len(breakdown.AppliedRules)))

	return q, nil
}

// Preview splits amount into subtotal and tax without any rule evaluation
func (s *Service) Preview(amount, taxRate decimal.Decimal, mode pricing.TaxMode, currency string) pricing.TaxResult {
	if strings.TrimSpace(currency) == "" {
		currency = s.defaults.Currency
	}
	return pricing.CalculateTax(amount, taxRate, mode, currency)
}

// matchContext derives the rule facts of a booking in the venue's timezone
func (s *Service) matchContext(req Request, now time.Time) pricing.RuleMatchContext {
	local := req.StartsAt.In(s.defaults.Location)
	day := int(local.Weekday())
	hours := req.StartsAt.Sub(now).Hours()

	return pricing.RuleMatchContext{
		Date:              local.Format(dateLayout),
		StartTime:         local.Format(clockLayout),
		DayOfWeek:         &day,
		AssetID:           req.AssetID,
		AssetType:         req.AssetType,
		HoursUntilBooking: &hours,
	}
}

func (s *Service) publish(ctx context.Context, q *Quote) {
	b := q.Breakdown
	ruleIDs := make([]string, 0, len(b.AppliedRules))
	for _, applied := range b.AppliedRules {
		ruleIDs = append(ruleIDs, applied.RuleID)
	}

	event := events.NewEvent(events.QuoteCalculated, q.VenueID, map[string]interface{}{
		"quote_id":      q.ID.String(),
		"asset_id":      q.AssetID,
		"currency":      b.Currency,
		"base_price":    b.BasePrice.String(),
		"subtotal":      b.Subtotal.String(),
		"discount":      b.Discount.String(),
		"tax_amount":    b.TaxAmount.String(),
		"service_fee":   b.ServiceFee.String(),
		"total_price":   b.TotalPrice.String(),
		"applied_rules": ruleIDs,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.RecordError("publish", "quote")
		log.Warn(ctx, "Failed to publish quote event",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func validate(req Request) error {
	if strings.TrimSpace(req.VenueID) == "" {
		return domain.NewInvalidInputError("venue_id is required", "")
	}
	if req.BasePrice.IsNegative() {
		return domain.NewInvalidInputError("base_price must not be negative", req.BasePrice.String())
	}
	if req.Discount.IsNegative() {
		return domain.NewInvalidInputError("discount must not be negative", req.Discount.String())
	}
	if req.StartsAt.IsZero() {
		return domain.NewInvalidInputError("starts_at is required", "")
	}
	if c := strings.TrimSpace(req.Currency); c != "" && !isCurrencyCode(c) {
		return domain.NewInvalidInputError("currency must be a three-letter code", c)
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return fallback
}
