// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry and exposed on /metrics.

var (
	// QueriesTotal counts dispatched queries by model and outcome
	// (success, fallback, cached).
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visiq",
		Subsystem: "dispatch",
		Name:      "queries_total",
		Help:      "Queries dispatched, by model and outcome.",
	}, []string{"model", "outcome"})

	// RetriesTotal counts retry attempts by model
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visiq",
		Subsystem: "dispatch",
		Name:      "retries_total",
		Help:      "Retry attempts against model backends.",
	}, []string{"model"})

	// TokensTotal counts tokens consumed by model
	TokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visiq",
		Subsystem: "dispatch",
		Name:      "tokens_total",
		Help:      "Tokens consumed across model calls.",
	}, []string{"model"})

	// FingerprintDuration tracks end-to-end fingerprint pipeline time
	FingerprintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "visiq",
		Subsystem: "fingerprint",
		Name:      "duration_seconds",
		Help:      "End-to-end fingerprint pipeline duration.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// VisibilityScore records the most recent score per business
	VisibilityScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "visiq",
		Subsystem: "fingerprint",
		Name:      "visibility_score",
		Help:      "Most recent visibility score per business.",
	}, []string{"business"})
)
