package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the data pipeline

var (
	// Provider fetch metrics
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_fetches_total",
			Help: "Total number of NBA Stats API fetches",
		},
		[]string{"endpoint", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_fetch_duration_seconds",
			Help:    "Duration of provider fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_fetch_retries_total",
			Help: "Total number of cool-down retries after transient fetch failures",
		},
	)

	// Ingestion metrics
	GamesIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_games_ingested_total",
			Help: "Total number of games fully ingested",
		},
	)

	GamesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_games_skipped_total",
			Help: "Total number of games skipped as already ingested",
		},
	)

	GamesFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_games_failed_total",
			Help: "Total number of games recorded as failed",
		},
	)

	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_ingest_run_duration_seconds",
			Help:    "Duration of full ingestion runs in seconds",
			Buckets: []float64{60, 300, 600, 1800, 3600, 7200, 14400},
		},
	)

	// Export and feature metrics
	RowsExported = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_rows_exported",
			Help: "Number of wide training rows in the latest export",
		},
	)

	FeatureRowsComputed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_feature_rows_computed",
			Help: "Number of feature rows retained in the latest run",
		},
	)

	// Scenario metrics
	ScenarioScoresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_scenario_scores_total",
			Help: "Total number of scenario probability computations",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_run_timestamp",
			Help: "Timestamp of last successful ingestion run",
		},
	)
)

// RecordFetch records a provider fetch
func RecordFetch(endpoint, status string, duration float64) {
	FetchesTotal.WithLabelValues(endpoint, status).Inc()
	FetchDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRetry records a cool-down retry
func RecordRetry() {
	FetchRetriesTotal.Inc()
}

// RecordRun records an ingestion run outcome
func RecordRun(fetched, skipped, failed int, duration float64) {
	GamesIngestedTotal.Add(float64(fetched))
	GamesSkippedTotal.Add(float64(skipped))
	GamesFailedTotal.Add(float64(failed))
	IngestRunDuration.Observe(duration)

	if fetched > 0 {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordScenarioScore records a scenario probability computation
func RecordScenarioScore() {
	ScenarioScoresTotal.Inc()
}
