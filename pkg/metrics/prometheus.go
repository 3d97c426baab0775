package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Participant kinds.
const (
	ParticipantActive = "active"
	ParticipantIdle   = "idle"
)

// Result kinds.
const (
	ResultWin  = "win"
	ResultDraw = "draw"
)

// Manager manages all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	solverBuckets    []float64
	registry         prometheus.Registerer

	// Rating periods
	periodsProcessed    prometheus.Counter
	periodsFailed       prometheus.Counter
	periodDuration      prometheus.Histogram
	participantsUpdated *prometheus.CounterVec
	solverIterations    prometheus.Histogram

	// Intake
	resultsRecorded *prometheus.CounterVec
	resultsRejected *prometheus.CounterVec
	trackedPlayers  prometheus.Gauge
	pendingResults  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Storage
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "glicko",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		solverBuckets:    []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.periodsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "periods_processed_total",
		Help:      "Total number of rating periods committed",
	})

	m.periodsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "periods_failed_total",
		Help:      "Total number of rating periods rejected without commit",
	})

	m.periodDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "period_duration_milliseconds",
		Help:      "Time to compute, commit and persist a rating period",
		Buckets:   m.histogramBuckets,
	})

	m.participantsUpdated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_updated_total",
		Help:      "Competitors updated by committed periods, by kind",
	}, []string{"kind"})

	m.solverIterations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "volatility_solver_iterations",
		Help:      "Illinois iterations per volatility solve",
		Buckets:   m.solverBuckets,
	})

	m.resultsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_recorded_total",
		Help:      "Game outcomes accepted into the current period, by kind",
	}, []string{"kind"})

	m.resultsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_rejected_total",
		Help:      "Game outcomes rejected, by reason",
	}, []string{"reason"})

	m.trackedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_players",
		Help:      "Competitors currently loaded in the roster",
	})

	m.pendingResults = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_results",
		Help:      "Results recorded in the open period",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Rating store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Rating store operation failures",
	}, []string{"op"})
}

// ObserveSolve records one volatility solve.
func (m *Manager) ObserveSolve(iterations int) {
	m.solverIterations.Observe(float64(iterations))
}

// ObservePeriod records one committed rating period.
func (m *Manager) ObservePeriod(active, idle, _ int) {
	m.periodsProcessed.Inc()
	m.participantsUpdated.WithLabelValues(ParticipantActive).Add(float64(active))
	m.participantsUpdated.WithLabelValues(ParticipantIdle).Add(float64(idle))
}

// RecordResult counts an accepted outcome of kind ResultWin or ResultDraw.
func (m *Manager) RecordResult(kind string) error {
	if kind != ResultWin && kind != ResultDraw {
		return fmt.Errorf("%w: result kind %q", ErrUnknownLabel, kind)
	}
	m.resultsRecorded.WithLabelValues(kind).Inc()
	return nil
}

// Default returns the process-wide manager bound to the custom registry.
func Default() *Manager {
	return globalManager
}

// RecordResult counts an accepted outcome on the global manager.
func RecordResult(kind string) error {
	return globalManager.RecordResult(kind)
}

// RecordResultRejected counts a rejected outcome.
func RecordResultRejected(reason string) {
	globalManager.resultsRejected.WithLabelValues(reason).Inc()
}

// RecordPeriodFailed counts a period that was not committed.
func RecordPeriodFailed() {
	globalManager.periodsFailed.Inc()
}

// RecordPeriodDuration records the time a period close took.
func RecordPeriodDuration(durationMs float64) {
	globalManager.periodDuration.Observe(durationMs)
}

// UpdateTrackedPlayers sets the roster size.
func UpdateTrackedPlayers(count int) {
	globalManager.trackedPlayers.Set(float64(count))
}

// UpdatePendingResults sets the open period's result count.
func UpdatePendingResults(count int) {
	globalManager.pendingResults.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordStoreLatency records a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
