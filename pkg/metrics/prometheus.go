// Package metrics provides Prometheus metrics for the satlens service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by satlens.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset
	datasetLoads       *prometheus.CounterVec
	datasetLoadLatency prometheus.Histogram
	datasetObjects     prometheus.Gauge
	datasetReady       prometheus.Gauge
	catalogRequests    *prometheus.CounterVec
	catalogLatency     prometheus.Histogram

	// Coloring and ranking
	binsComputed     *prometheus.CounterVec
	noDataTotal      *prometheus.CounterVec
	rankingsRendered *prometheus.CounterVec

	// Selection
	searches          *prometheus.CounterVec
	picks             *prometheus.CounterVec
	highlighted       prometheus.Gauge
	flyToLatency      prometheus.Histogram
	flightsSuperseded prometheus.Counter

	// Event loop
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueRejected   *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec
	eventLatency    *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "satlens",
		subsystem:        "viewer",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
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
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.datasetLoads = auto.NewCounterVec(m.counterOpts("dataset_loads_total",
		"Dataset load attempts by source and result"), []string{"source", "result"})
	m.datasetLoadLatency = auto.NewHistogram(m.histogramOpts("dataset_load_latency_milliseconds",
		"End-to-end dataset load latency in milliseconds", nil))
	m.datasetObjects = auto.NewGauge(m.gaugeOpts("dataset_objects",
		"Number of tracked objects in the current snapshot"))
	m.datasetReady = auto.NewGauge(m.gaugeOpts("dataset_ready",
		"1 once a dataset snapshot is loaded, 0 while loading"))
	m.catalogRequests = auto.NewCounterVec(m.counterOpts("catalog_requests_total",
		"Requests sent to the asset catalog by call and status code"), []string{"call", "status_code"})
	m.catalogLatency = auto.NewHistogram(m.histogramOpts("catalog_latency_milliseconds",
		"Asset catalog request latency in milliseconds", nil))

	m.binsComputed = auto.NewCounterVec(m.counterOpts("bins_computed_total",
		"Metric binning runs by metric"), []string{"metric"})
	m.noDataTotal = auto.NewCounterVec(m.counterOpts("metric_no_data_total",
		"Metric selections where no object defined the metric"), []string{"metric"})
	m.rankingsRendered = auto.NewCounterVec(m.counterOpts("rankings_rendered_total",
		"Ranking lists produced by metric"), []string{"metric"})

	m.searches = auto.NewCounterVec(m.counterOpts("searches_total",
		"Search submissions by result (hit, miss, empty)"), []string{"result"})
	m.picks = auto.NewCounterVec(m.counterOpts("picks_total",
		"Pick events by target (object, empty)"), []string{"target"})
	m.highlighted = auto.NewGauge(m.gaugeOpts("highlighted_objects",
		"Objects currently shown with a path overlay"))
	m.flyToLatency = auto.NewHistogram(m.histogramOpts("fly_to_latency_milliseconds",
		"Camera fly-to duration until its completion signal", nil))
	m.flightsSuperseded = auto.NewCounter(m.counterOpts("flights_superseded_total",
		"Fly-to completions dropped because a newer selection happened meanwhile"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("event_queue_size",
		"Current number of pending UI events"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("event_queue_capacity",
		"Capacity of the UI event queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("event_queue_enqueued_total",
		"UI events accepted by the queue"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("event_queue_rejected_total",
		"UI events rejected by the queue by reason"), []string{"reason"})
	m.eventsProcessed = auto.NewCounterVec(m.counterOpts("events_processed_total",
		"UI events handled by the event loop by kind and outcome"), []string{"kind", "outcome"})
	m.eventLatency = auto.NewHistogramVec(m.histogramOpts("event_latency_milliseconds",
		"Event handling latency in milliseconds by kind", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status code"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", nil), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and error type"), []string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"Average GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Dataset metrics.

// RecordDatasetLoad counts a dataset load attempt.
func RecordDatasetLoad(source, result string) {
	globalManager.datasetLoads.WithLabelValues(source, result).Inc()
}

// RecordDatasetLoadLatency observes an end-to-end load duration.
func RecordDatasetLoadLatency(latencyMs float64) {
	globalManager.datasetLoadLatency.Observe(latencyMs)
}

// UpdateDatasetObjects sets the size of the current snapshot.
func UpdateDatasetObjects(count int) {
	globalManager.datasetObjects.Set(float64(count))
}

// UpdateDatasetReady flips the readiness gauge.
func UpdateDatasetReady(ready bool) {
	if ready {
		globalManager.datasetReady.Set(1)
		return
	}
	globalManager.datasetReady.Set(0)
}

// RecordCatalogRequest counts a catalog call.
func RecordCatalogRequest(call, statusCode string) {
	globalManager.catalogRequests.WithLabelValues(call, statusCode).Inc()
}

// RecordCatalogLatency observes a catalog call duration.
func RecordCatalogLatency(latencyMs float64) {
	globalManager.catalogLatency.Observe(latencyMs)
}

// Coloring and ranking metrics.

// RecordBinsComputed counts a binning run.
func RecordBinsComputed(metric string) {
	globalManager.binsComputed.WithLabelValues(metric).Inc()
}

// RecordNoData counts a metric selection without any defined value.
func RecordNoData(metric string) {
	globalManager.noDataTotal.WithLabelValues(metric).Inc()
}

// RecordRankingsRendered counts a ranking list computation.
func RecordRankingsRendered(metric string) {
	globalManager.rankingsRendered.WithLabelValues(metric).Inc()
}

// Selection metrics.

// RecordSearch counts a search by result.
func RecordSearch(result string) {
	globalManager.searches.WithLabelValues(result).Inc()
}

// RecordPick counts a pick by target.
func RecordPick(target string) {
	globalManager.picks.WithLabelValues(target).Inc()
}

// UpdateHighlightedCount sets the number of highlighted objects.
func UpdateHighlightedCount(count int) {
	globalManager.highlighted.Set(float64(count))
}

// RecordFlyToLatency observes how long a fly-to took to signal completion.
func RecordFlyToLatency(latencyMs float64) {
	globalManager.flyToLatency.Observe(latencyMs)
}

// RecordFlightSuperseded counts a dropped fly-to completion.
func RecordFlightSuperseded() {
	globalManager.flightsSuperseded.Inc()
}

// Event loop metrics.

// UpdateQueueSize sets the number of pending events.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted event.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a rejected event.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordEventProcessed counts a handled event.
func RecordEventProcessed(kind, outcome string) {
	globalManager.eventsProcessed.WithLabelValues(kind, outcome).Inc()
}

// RecordEventLatency observes event handling latency.
func RecordEventLatency(kind string, latencyMs float64) {
	globalManager.eventLatency.WithLabelValues(kind).Observe(latencyMs)
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
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
