package arbengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpportunitiesDetectedTotal tracks opportunities emitted by strategy.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsarb_arbengine_opportunities_detected_total",
			Help: "Total number of opportunities detected by strategy",
		},
		[]string{"strategy"},
	)

	// EdgeRatio tracks the edge of every emitted opportunity.
	EdgeRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_arbengine_edge_ratio",
		Help:    "Edge (unit-interval) of detected opportunities",
		Buckets: []float64{0.005, 0.01, 0.02, 0.03, 0.05, 0.08, 0.1, 0.15, 0.2},
	})

	// OpportunityStakeUSD tracks total stake committed per opportunity.
	OpportunityStakeUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_arbengine_opportunity_stake_usd",
		Help:    "Total stake in USD across an opportunity's legs",
		Buckets: prometheus.ExponentialBuckets(5, 2, 6), // 5..160
	})

	// ScanDurationSeconds tracks the CPU-bound detection pass latency.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_arbengine_scan_duration_seconds",
		Help:    "Duration of one ArbEngine scan over an event batch",
		Buckets: prometheus.DefBuckets,
	})

	// MalformedOutcomesSkippedTotal tracks outcomes the engine dropped
	// (zero price, missing point, duplicate names).
	MalformedOutcomesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsarb_arbengine_malformed_outcomes_skipped_total",
			Help: "Total number of malformed outcomes silently skipped",
		},
		[]string{"reason"},
	)
)
