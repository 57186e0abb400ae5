package creditguard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CreditsRemaining mirrors the last credit count the guard observed.
	CreditsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsarb_creditguard_credits_remaining",
		Help: "Most recently observed vendor request credits remaining.",
	})

	// GuardTrippedTotal counts how many times the guard transitioned into
	// the tripped state.
	GuardTrippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_creditguard_tripped_total",
		Help: "Total times the credit guard tripped and aborted remaining fetches.",
	})
)
