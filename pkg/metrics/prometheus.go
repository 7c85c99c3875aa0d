// Package metrics provides Prometheus metrics for the bidhub marketplace service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Marketplace activity
	usersRegistered      *prometheus.CounterVec
	logins               *prometheus.CounterVec
	jobsPosted           prometheus.Counter
	jobsDeleted          prometheus.Counter
	applicationsSubmit   prometheus.Counter
	applicationsAccepted prometheus.Counter
	projectsCompleted    prometheus.Counter
	bidsPlaced           prometheus.Counter
	bidsAccepted         prometheus.Counter
	bidAmount            prometheus.Histogram

	// Notification pipeline
	eventsEnqueued        *prometheus.CounterVec
	eventsDropped         *prometheus.CounterVec
	eventsDuplicate       prometheus.Counter
	notificationsCreated  *prometheus.CounterVec
	queueSize             prometheus.Gauge
	queueCapacity         prometheus.Gauge
	queueUtilization      prometheus.Gauge
	workerCount           prometheus.Gauge
	workerProcessingDelay prometheus.Histogram
	workerErrors          prometheus.Counter

	// Storage
	storeOpLatency *prometheus.HistogramVec
	storeErrors    *prometheus.CounterVec

	// Leaderboard index
	rankedFreelancers     prometheus.Gauge
	rankingRebuildLatency prometheus.Histogram
	rankingLastRebuild    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Errors by component
	errorRateByComponent *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// latencyBucketsMs covers request latencies from 1ms to 5s.
var latencyBucketsMs = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// customRegistry keeps the Go runtime collectors out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bidhub",
		subsystem:        "marketplace",
		histogramBuckets: latencyBucketsMs,
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	latencyBuckets := []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

	m.usersRegistered = m.counterVec("users_registered_total", "Accounts created, by role", "role")
	m.logins = m.counterVec("logins_total", "Login attempts, by result", "result")
	m.jobsPosted = m.counter("jobs_posted_total", "Jobs posted by admins")
	m.jobsDeleted = m.counter("jobs_deleted_total", "Jobs soft-deleted")
	m.applicationsSubmit = m.counter("applications_submitted_total", "Applications submitted by freelancers")
	m.applicationsAccepted = m.counter("applications_accepted_total", "Applications accepted directly or through a bid")
	m.projectsCompleted = m.counter("projects_completed_total", "Projects marked complete")
	m.bidsPlaced = m.counter("bids_placed_total", "Bids placed on applications")
	m.bidsAccepted = m.counter("bids_accepted_total", "Bids accepted")
	m.bidAmount = m.histogram("bid_amount", "Distribution of bid amounts",
		[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000})

	m.eventsEnqueued = m.counterVec("events_enqueued_total", "Domain events accepted by the notification queue", "kind")
	m.eventsDropped = m.counterVec("events_dropped_total", "Domain events dropped before delivery", "reason")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Domain events rejected as duplicates")
	m.notificationsCreated = m.counterVec("notifications_created_total", "Notifications written, by type", "type")
	m.queueSize = m.gauge("queue_size", "Current number of queued domain events")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued domain events")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.workerCount = m.gauge("worker_count", "Notification workers running")
	m.workerProcessingDelay = m.histogram("worker_processing_latency_milliseconds", "Time to turn one event into notifications", latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Events a worker failed to process")

	m.storeOpLatency = m.histogramVec("store_operation_latency_milliseconds", "Store call latency", latencyBuckets, "collection", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Store calls that returned an unexpected error", "collection", "op")

	m.rankedFreelancers = m.gauge("ranked_freelancers", "Freelancers held by the leaderboard index")
	m.rankingRebuildLatency = m.histogram("ranking_rebuild_latency_milliseconds", "Leaderboard index rebuild time", latencyBuckets)
	m.rankingLastRebuild = m.gauge("ranking_last_rebuild_unixtime", "Unix time of the last leaderboard rebuild")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request latency", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("http_errors_total", "HTTP error responses by endpoint and class", "endpoint", "method", "error_type")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and kind", "component", "kind")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause", latencyBuckets)
}

// Marketplace activity.

// RecordUserRegistered counts a new account.
func RecordUserRegistered(role string) { globalManager.usersRegistered.WithLabelValues(role).Inc() }

// RecordLogin counts a login attempt; result is "success" or "failure".
func RecordLogin(result string) { globalManager.logins.WithLabelValues(result).Inc() }

// RecordJobPosted counts a new job.
func RecordJobPosted() { globalManager.jobsPosted.Inc() }

// RecordJobDeleted counts a soft delete.
func RecordJobDeleted() { globalManager.jobsDeleted.Inc() }

// RecordApplicationSubmitted counts a new application.
func RecordApplicationSubmitted() { globalManager.applicationsSubmit.Inc() }

// RecordApplicationAccepted counts an accepted application.
func RecordApplicationAccepted() { globalManager.applicationsAccepted.Inc() }

// RecordProjectCompleted counts a completed project.
func RecordProjectCompleted() { globalManager.projectsCompleted.Inc() }

// RecordBidPlaced counts a bid and observes its amount.
func RecordBidPlaced(amount float64) {
	globalManager.bidsPlaced.Inc()
	globalManager.bidAmount.Observe(amount)
}

// RecordBidAccepted counts an accepted bid.
func RecordBidAccepted() { globalManager.bidsAccepted.Inc() }

// Notification pipeline.

// RecordEventEnqueued counts an event accepted by the queue.
func RecordEventEnqueued(kind string) { globalManager.eventsEnqueued.WithLabelValues(kind).Inc() }

// RecordEventDropped counts an event that never reached a worker.
func RecordEventDropped(reason string) { globalManager.eventsDropped.WithLabelValues(reason).Inc() }

// RecordEventDuplicate counts an event rejected by the dedupe set.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordNotificationCreated counts a stored notification.
func RecordNotificationCreated(kind string) {
	globalManager.notificationsCreated.WithLabelValues(kind).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records the time spent on one event.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingDelay.Observe(latencyMs)
}

// RecordWorkerError counts an event a worker failed to handle.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Storage.

// RecordStoreLatency observes the latency of one store call.
func RecordStoreLatency(collection, op string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(collection, op).Observe(latencyMs)
}

// RecordStoreError counts an unexpected store failure.
func RecordStoreError(collection, op string) {
	globalManager.storeErrors.WithLabelValues(collection, op).Inc()
}

// Leaderboard index.

// UpdateRankedFreelancers sets the size of the leaderboard index.
func UpdateRankedFreelancers(count int) { globalManager.rankedFreelancers.Set(float64(count)) }

// RecordRankingRebuild observes a full index rebuild.
func RecordRankingRebuild(latencyMs float64, unixTime float64) {
	globalManager.rankingRebuildLatency.Observe(latencyMs)
	globalManager.rankingLastRebuild.Set(unixTime)
}

// HTTP.

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
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and kind labels.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorRateByComponent.WithLabelValues(component, kind).Inc()
}

// Process.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
