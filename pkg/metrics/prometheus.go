// Package metrics provides Prometheus metrics for the build card service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes recorded by RecordSubmission.
const (
	SubmissionNew      = "new"
	SubmissionImproved = "improved"
	SubmissionKept     = "kept"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	httpBuckets    []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Scoring
	scoringLatency prometheus.Histogram
	scoringErrors  *prometheus.CounterVec

	// Leaderboard
	submissions              *prometheus.CounterVec
	leaderboardUpdateLatency prometheus.Histogram
	storeErrors              *prometheus.CounterVec

	// Weighting profiles
	profileReloads *prometheus.CounterVec
	profilesLoaded prometheus.Gauge

	// Provider cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "buildcard",
		subsystem:      "service",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		httpBuckets:    []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000, 2500},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.scoringLatency = auto.NewHistogram(m.histogramOpts(
		"scoring_latency_milliseconds", "Time spent scoring one build", m.latencyBuckets))
	m.scoringErrors = auto.NewCounterVec(m.counterOpts(
		"scoring_errors_total", "Scoring inputs rejected as malformed, by kind"), []string{"kind"})

	m.submissions = auto.NewCounterVec(m.counterOpts(
		"submissions_total", "Leaderboard submissions by outcome"), []string{"outcome"})
	m.leaderboardUpdateLatency = auto.NewHistogram(m.histogramOpts(
		"leaderboard_update_latency_milliseconds", "Read-modify-write latency of a leaderboard submission", m.latencyBuckets))
	m.storeErrors = auto.NewCounterVec(m.counterOpts(
		"store_errors_total", "Leaderboard storage failures by operation"), []string{"backend", "op"})

	m.profileReloads = auto.NewCounterVec(m.counterOpts(
		"profile_reloads_total", "Weighting profile dataset reloads by result"), []string{"result"})
	m.profilesLoaded = auto.NewGauge(m.gaugeOpts(
		"profiles_loaded", "Number of weighting profiles in the active dataset"))

	m.cacheHits = auto.NewCounter(m.counterOpts("build_cache_hits_total", "Provider build cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("build_cache_misses_total", "Provider build cache misses"))
	m.cacheEntries = auto.NewGauge(m.gaugeOpts("build_cache_entries", "Entries held by the provider build cache"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.httpBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts(
		"http_errors_total", "HTTP error responses by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordScoringLatency records build scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError counts a rejected scoring input.
func RecordScoringError(kind string) {
	globalManager.scoringErrors.WithLabelValues(kind).Inc()
}

// RecordSubmission counts a leaderboard submission by outcome.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordLeaderboardUpdateLatency records submission latency in milliseconds.
func RecordLeaderboardUpdateLatency(latencyMs float64) {
	globalManager.leaderboardUpdateLatency.Observe(latencyMs)
}

// RecordStoreError counts a storage failure.
func RecordStoreError(backend, op string) {
	globalManager.storeErrors.WithLabelValues(backend, op).Inc()
}

// RecordProfileReload counts a dataset reload attempt.
func RecordProfileReload(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	globalManager.profileReloads.WithLabelValues(result).Inc()
}

// UpdateProfilesLoaded sets the number of loaded profiles.
func UpdateProfilesLoaded(count int) {
	globalManager.profilesLoaded.Set(float64(count))
}

// RecordCacheHit counts a provider cache hit.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss counts a provider cache miss.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// UpdateCacheEntries sets the provider cache size.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
