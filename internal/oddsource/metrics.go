package oddsource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts calls made to the odds source by endpoint.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsarb_oddsource_requests_total",
		Help: "Total requests issued to the odds source, by endpoint.",
	}, []string{"endpoint"})

	// ErrorsTotal counts non-2xx or transport failures, by classified kind.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsarb_oddsource_errors_total",
		Help: "Total odds source request failures, by kind.",
	}, []string{"kind"})

	// RequestDuration observes wall-clock latency per endpoint.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oddsarb_oddsource_request_duration_seconds",
		Help:    "Odds source request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// CreditsRemaining tracks the most recently observed vendor credit
	// balance, driving the credit guard.
	CreditsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsarb_oddsource_credits_remaining",
		Help: "Most recently observed remaining request credits on the odds source.",
	})

	// SportsCacheHitsTotal and SportsCacheMissesTotal track how often the
	// sports list is served from cache instead of spending a vendor credit.
	SportsCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_oddsource_sports_cache_hits_total",
		Help: "Total sports-list requests served from cache.",
	})
	SportsCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_oddsource_sports_cache_misses_total",
		Help: "Total sports-list requests that fell through to the odds source.",
	})
)
