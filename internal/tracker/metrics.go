package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrackerSaveTotal counts successful atomic writes of tracker state.
	TrackerSaveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_tracker_saves_total",
		Help: "Total successful opportunity tracker persist operations.",
	})

	// TrackedRecordsGauge is the current size of the tracker's record set.
	TrackedRecordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsarb_tracker_records",
		Help: "Current number of tracked opportunity records.",
	})

	// NovelOpportunitiesTotal counts opportunities returned as novel by
	// Ingest (first sightings plus TTL re-emergences).
	NovelOpportunitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_tracker_novel_opportunities_total",
		Help: "Total novel opportunities surfaced by the tracker.",
	})
)
