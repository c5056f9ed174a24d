// Package metrics holds the Prometheus collectors for the league API.
// Handlers and services record into a *Metrics; cmd/server exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchplay_league"

// Metrics groups every collector the application records into.
type Metrics struct {
	HandicapRecalculations prometheus.Counter
	HandicapsUpdated       prometheus.Counter
	HandicapsSkipped       prometheus.Counter
	RecalculationDuration  prometheus.Histogram
	ScoresRecorded         prometheus.Counter
	MatchesScored          *prometheus.CounterVec // label: result (a, b, all_square, not_started)
	SchedulesGenerated     prometheus.Counter
	MatchesScheduled       prometheus.Counter
	LiveClients            prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HandicapRecalculations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handicap_recalculations_total",
			Help:      "League-wide handicap recalculations run.",
		}),
		HandicapsUpdated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handicaps_updated_total",
			Help:      "Member handicap indexes written.",
		}),
		HandicapsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handicaps_skipped_total",
			Help:      "Members left without an index because they have too few scores.",
		}),
		RecalculationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handicap_recalculation_seconds",
			Help:      "Time taken to recalculate every handicap in a league.",
			Buckets:   prometheus.DefBuckets,
		}),
		ScoresRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hole_scores_recorded_total",
			Help:      "Hole scores submitted.",
		}),
		MatchesScored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_scored_total",
			Help:      "Match statuses recomputed after a hole score was submitted, by result.",
		}, []string{"result"}),
		SchedulesGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Schedule generation runs.",
		}),
		MatchesScheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_scheduled_total",
			Help:      "Matches created by schedule generation.",
		}),
		LiveClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_match_clients",
			Help:      "Websocket clients watching a match.",
		}),
	}
}

// NewNoop returns collectors registered on a throwaway registry, for tests and tooling.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}
