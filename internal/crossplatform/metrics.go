package crossplatform

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpportunitiesDetectedTotal tracks cross_platform_value detections.
	OpportunitiesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_crossplatform_opportunities_detected_total",
		Help: "Total number of cross-platform value opportunities detected",
	})

	// SkippedTotal tracks ContractGame sides skipped by reason (illiquid,
	// unresolved team, no same-game offers, below threshold).
	SkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsarb_crossplatform_skipped_total",
			Help: "Total number of contract sides skipped by reason",
		},
		[]string{"reason"},
	)

	// EdgeRatio tracks the |contract_prob - sb_consensus| edge of detections.
	EdgeRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_crossplatform_edge_ratio",
		Help:    "Edge of detected cross-platform opportunities",
		Buckets: []float64{0.01, 0.02, 0.03, 0.05, 0.08, 0.1, 0.15, 0.2},
	})
)
