// Package metrics provides the centralized Prometheus metrics registry
// for the prediction engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every instrument with the registry it is registered
// on, so tests and concurrent runs do not share global state.
type Metrics struct {
	registry *prometheus.Registry

	// Counter metrics
	GamesProcessedTotal     prometheus.Counter
	PredictionsTotal        prometheus.Counter
	SkippedTiesTotal        prometheus.Counter
	PredictionsSkippedTotal prometheus.Counter
	GamesIngestedTotal      prometheus.Counter
	IngestionErrorsTotal    prometheus.Counter
	SegmentEdgesTotal       prometheus.Counter

	// Gauge metrics
	TrackedTeams prometheus.Gauge

	// Histogram metrics
	BacktestDuration  prometheus.Histogram
	IngestionDuration prometheus.Histogram
}

// New creates and registers the full instrument set on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GamesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "games_processed_total",
			Help:      "Total number of games folded into team state",
		}),
		PredictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "predictions_total",
			Help:      "Total number of pre-game predictions recorded",
		}),
		SkippedTiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "skipped_ties_total",
			Help:      "Total number of tied games excluded from replay",
		}),
		PredictionsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "predictions_skipped_total",
			Help:      "Total number of games folded without a prediction",
		}),
		GamesIngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "games_ingested_total",
			Help:      "Total number of games written by ingestion",
		}),
		IngestionErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "ingestion_errors_total",
			Help:      "Total number of ingestion failures",
		}),
		SegmentEdgesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "segment_edges_total",
			Help:      "Total number of segments classified above the pass tier",
		}),
		TrackedTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "courtline",
			Name:      "tracked_teams",
			Help:      "Number of teams with accumulated state",
		}),
		BacktestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "courtline",
			Name:      "backtest_duration_seconds",
			Help:      "Duration of backtest runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		IngestionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "courtline",
			Name:      "ingestion_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.GamesProcessedTotal,
		m.PredictionsTotal,
		m.SkippedTiesTotal,
		m.PredictionsSkippedTotal,
		m.GamesIngestedTotal,
		m.IngestionErrorsTotal,
		m.SegmentEdgesTotal,
		m.TrackedTeams,
		m.BacktestDuration,
		m.IngestionDuration,
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
