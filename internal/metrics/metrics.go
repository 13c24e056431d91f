// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_training_duration_seconds",
			Help:    "Duration of offline training stages in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"}, // "cf", "content"
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_training_runs_total",
			Help: "Total number of training stage runs by result",
		},
		[]string{"stage", "result"},
	)

	ModelShape = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinemind_model_shape",
			Help: "Dimensions of the most recently trained or loaded artifacts",
		},
		[]string{"dimension"}, // "users", "items", "rank", "ratings", "content_items", "terms"
	)

	// Artifact Metrics
	ArtifactLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_artifact_loads_total",
			Help: "Total number of artifact loads by artifact and result",
		},
		[]string{"artifact", "result"}, // result: "ok", "not_found", "corrupt", "error"
	)

	ArtifactSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_artifact_saves_total",
			Help: "Total number of artifact saves by artifact and result",
		},
		[]string{"artifact", "result"},
	)

	SnapshotReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_snapshot_reloads_total",
			Help: "Total number of serving snapshot reload attempts",
		},
		[]string{"result"},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinemind_snapshot_version",
			Help: "Version counter of the installed serving snapshot",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_recommendation_requests_total",
			Help: "Total number of recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_recommendation_duration_seconds",
			Help:    "Duration of recommendation scoring in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemind_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemind_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Data Source Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_duckdb_rows_read_total",
			Help: "Total number of rows read from source files",
		},
		[]string{"operation"},
	)

	// Catalog Metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_catalog_requests_total",
			Help: "Total number of catalog API requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	CatalogIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_catalog_ingested_total",
			Help: "Total number of catalog items processed by ingestion, by result",
		},
		[]string{"result"}, // "stored", "skipped", "failed"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinemind_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordTraining records one training stage run.
func RecordTraining(stage string, duration time.Duration, err error) {
	TrainingDuration.WithLabelValues(stage).Observe(duration.Seconds())
	TrainingRuns.WithLabelValues(stage, resultLabel(err)).Inc()
}

// RecordModelShape publishes the dimensions of a CF model.
func RecordModelShape(users, items, rank, ratings int) {
	ModelShape.WithLabelValues("users").Set(float64(users))
	ModelShape.WithLabelValues("items").Set(float64(items))
	ModelShape.WithLabelValues("rank").Set(float64(rank))
	ModelShape.WithLabelValues("ratings").Set(float64(ratings))
}

// RecordContentShape publishes the dimensions of a content space.
func RecordContentShape(items, terms int) {
	ModelShape.WithLabelValues("content_items").Set(float64(items))
	ModelShape.WithLabelValues("terms").Set(float64(terms))
}

// RecordArtifactLoad records an artifact load. result is one of
// ok, not_found, corrupt, error.
func RecordArtifactLoad(artifact, result string) {
	ArtifactLoads.WithLabelValues(artifact, result).Inc()
}

// RecordArtifactSave records an artifact save.
func RecordArtifactSave(artifact string, err error) {
	ArtifactSaves.WithLabelValues(artifact, resultLabel(err)).Inc()
}

// RecordReload records a snapshot reload attempt and, on success, the new version.
func RecordReload(version uint64, err error) {
	SnapshotReloads.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		SnapshotVersion.Set(float64(version))
	}
}

// RecordRecommendation records one scoring request.
func RecordRecommendation(mode, outcome string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(mode, outcome).Inc()
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordCacheLookup records a recommendation cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
		return
	}
	RecommendationCacheMisses.Inc()
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records a DuckDB read.
func RecordDBQuery(operation string, duration time.Duration, rows int) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	DBRowsRead.WithLabelValues(operation).Add(float64(rows))
}

// RecordCatalogRequest records a catalog API call.
func RecordCatalogRequest(endpoint string, err error) {
	CatalogRequests.WithLabelValues(endpoint, resultLabel(err)).Inc()
}

// RecordIngest records the outcome for one catalog item.
func RecordIngest(result string) {
	CatalogIngested.WithLabelValues(result).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
