// Package metrics provides Prometheus metrics for the arena service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	achievementsGranted   *prometheus.CounterVec
	achievementDuplicates *prometheus.CounterVec
	malformedRecords      *prometheus.CounterVec
	pacingStatus          *prometheus.CounterVec
	standingsComputed     prometheus.Counter
	standingsLatency      prometheus.Histogram
	celebrations          prometheus.Counter
	feedDrops             prometheus.Counter

	// Evaluation pipeline
	evaluations         *prometheus.CounterVec
	evaluationsCoalesce prometheus.Counter
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueUtilization    prometheus.Gauge
	queueEnqueued       prometheus.Counter
	queueDequeued       prometheus.Counter
	queueEnqueueErrors  *prometheus.CounterVec
	workerActive        prometheus.Gauge
	workerRate          prometheus.Gauge
	workerLatency       prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.achievementsGranted = m.counterVec("achievements_granted_total",
		"Achievements newly granted", "category")
	m.achievementDuplicates = m.counterVec("achievement_duplicates_total",
		"Grant attempts that found the achievement already present; race=true when the store rejected the insert", "race")
	m.malformedRecords = m.counterVec("malformed_records_total",
		"Activity records skipped by the points calculator", "category")
	m.pacingStatus = m.counterVec("pacing_snapshots_total",
		"Pacing snapshots computed by status", "status")
	m.standingsComputed = m.counter("standings_computed_total",
		"Team standings computed")
	m.standingsLatency = m.histogram("standings_latency_milliseconds",
		"Time to load records and rank teams")
	m.celebrations = m.counter("streak_celebrations_total",
		"Winning streaks celebrated")
	m.feedDrops = m.counter("feed_drops_total",
		"Grant notifications dropped for slow subscribers")

	m.evaluations = m.counterVec("evaluations_total",
		"Achievement evaluations run by outcome", "outcome")
	m.evaluationsCoalesce = m.counter("evaluations_coalesced_total",
		"Evaluation requests merged into one already pending")
	m.queueSize = m.gauge("queue_size", "Evaluation jobs waiting")
	m.queueCapacity = m.gauge("queue_capacity", "Evaluation queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Evaluation queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Evaluation jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Evaluation jobs handed to workers")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total",
		"Evaluation jobs rejected by the queue", "reason")
	m.workerActive = m.gauge("worker_active_count", "Evaluation workers running")
	m.workerRate = m.gauge("worker_jobs_per_second", "Evaluation jobs processed per second")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to evaluate one job")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total",
		"Errors by component and type", "component", "error_type")
}

// GetRegistry returns the registry the global manager exposes.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func enabled() bool { return globalManager != nil && globalManager.enabled }

// RecordAchievementGranted counts a new grant.
func RecordAchievementGranted(category string) {
	if enabled() {
		globalManager.achievementsGranted.WithLabelValues(category).Inc()
	}
}

// RecordAchievementDuplicate counts a grant that was already present.
func RecordAchievementDuplicate(race bool) {
	if !enabled() {
		return
	}
	label := "false"
	if race {
		label = "true"
	}
	globalManager.achievementDuplicates.WithLabelValues(label).Inc()
}

// RecordMalformedRecord counts a skipped record.
func RecordMalformedRecord(category string) {
	if enabled() {
		globalManager.malformedRecords.WithLabelValues(category).Inc()
	}
}

// RecordPacingStatus counts a computed pacing snapshot.
func RecordPacingStatus(status string) {
	if enabled() {
		globalManager.pacingStatus.WithLabelValues(status).Inc()
	}
}

// RecordStandings counts a standings computation and its latency.
func RecordStandings(latencyMs float64) {
	if enabled() {
		globalManager.standingsComputed.Inc()
		globalManager.standingsLatency.Observe(latencyMs)
	}
}

// RecordCelebration counts a celebrated streak.
func RecordCelebration() {
	if enabled() {
		globalManager.celebrations.Inc()
	}
}

// RecordFeedDrop counts a dropped grant notification.
func RecordFeedDrop() {
	if enabled() {
		globalManager.feedDrops.Inc()
	}
}

// RecordEvaluation counts an evaluation by outcome: granted, none or error.
func RecordEvaluation(outcome string) {
	if enabled() {
		globalManager.evaluations.WithLabelValues(outcome).Inc()
	}
}

// RecordEvaluationCoalesced counts a request merged into a pending job.
func RecordEvaluationCoalesced() {
	if enabled() {
		globalManager.evaluationsCoalesce.Inc()
	}
}

// UpdateQueue sets queue size, capacity and utilization.
func UpdateQueue(size, capacity int) {
	if !enabled() {
		return
	}
	globalManager.queueSize.Set(float64(size))
	globalManager.queueCapacity.Set(float64(capacity))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	if enabled() {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	if enabled() {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	if enabled() {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	if enabled() {
		globalManager.workerActive.Set(float64(count))
	}
}

// UpdateWorkerJobsPerSecond sets the processing rate.
func UpdateWorkerJobsPerSecond(rate float64) {
	if enabled() {
		globalManager.workerRate.Set(rate)
	}
}

// RecordWorkerProcessingLatency observes the time to evaluate one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if enabled() {
		globalManager.workerLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if enabled() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if enabled() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	if enabled() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}
