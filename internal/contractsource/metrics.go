package contractsource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_contractsource_requests_total",
		Help: "Total requests issued to the contract source.",
	})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsarb_contractsource_errors_total",
		Help: "Total contract source request failures, by kind.",
	}, []string{"kind"})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsarb_contractsource_request_duration_seconds",
		Help:    "Contract source request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// SkippedTotal counts raw market pairs that couldn't be resolved into
	// a ContractGame (missing sibling, unparseable title, or unmatched
	// yes_sub_title).
	SkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_contractsource_unpairable_markets_total",
		Help: "Total contract markets skipped for failing to pair into a ContractGame.",
	})
)
