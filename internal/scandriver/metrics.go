package scandriver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts every scan cycle attempted.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_scandriver_cycles_total",
		Help: "Total number of scan cycles attempted",
	})

	// CycleFailuresTotal counts cycles that ended in a fatal cycle error.
	CycleFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_scandriver_cycle_failures_total",
		Help: "Total number of scan cycles aborted by a fatal error",
	})

	// CycleDurationSeconds tracks one full cycle's wall-clock latency,
	// fetch and detection combined.
	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_scandriver_cycle_duration_seconds",
		Help:    "Duration of one scan cycle end to end",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	// SportFetchFailuresTotal counts per-sport fetch failures absorbed
	// without failing the cycle.
	SportFetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_scandriver_sport_fetch_failures_total",
		Help: "Total number of per-sport fetch failures that did not abort the cycle",
	})
)
