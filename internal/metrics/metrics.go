package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Total number of booking quotes calculated",
		},
		[]string{"currency", "status"},
	)

	QuoteTotalAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_quote_total_amount",
			Help:    "Distribution of quoted total prices",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"currency"},
	)

	QuoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_quote_duration_seconds",
			Help:    "Time spent producing a quote, including rule lookup",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Rule metrics
	RulesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_rules_applied_total",
			Help: "Total number of pricing rules that fired",
		},
		[]string{"adjustment_type"},
	)

	RuleCacheHit = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricing_rule_cache_hit_total",
			Help: "Total number of rule cache hits",
		},
	)

	RuleCacheMiss = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricing_rule_cache_miss_total",
			Help: "Total number of rule cache misses",
		},
	)

	RuleStoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_rule_store_query_duration_seconds",
			Help:    "Rule store query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Audit event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_events_published_total",
			Help: "Total number of audit events published",
		},
		[]string{"event_type", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "component"},
	)
)

// RecordQuote records a calculated quote
func RecordQuote(currency, status string, total float64, duration time.Duration) {
	QuotesTotal.WithLabelValues(currency, status).Inc()
	QuoteDuration.Observe(duration.Seconds())
	if status == "ok" {
		QuoteTotalAmount.WithLabelValues(currency).Observe(total)
	}
}

// RecordRuleApplied records a rule that fired
func RecordRuleApplied(adjustmentType string) {
	RulesApplied.WithLabelValues(adjustmentType).Inc()
}

// RecordRuleCacheHit records a rule cache hit
func RecordRuleCacheHit() {
	RuleCacheHit.Inc()
}

// RecordRuleCacheMiss records a rule cache miss
func RecordRuleCacheMiss() {
	RuleCacheMiss.Inc()
}

// RecordRuleStoreQuery records a rule store query
func RecordRuleStoreQuery(operation string, duration time.Duration) {
	RuleStoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEventPublished records an audit event publication
func RecordEventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(eventType, status).Inc()
}

// RecordError records an error
func RecordError(errorType, component string) {
	ErrorsTotal.WithLabelValues(errorType, component).Inc()
}
