// Package metrics provides Prometheus metrics for the most-popular service.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeSuccess          = "success"
	OutcomeBadConfiguration = "bad_configuration"
	OutcomeNotFound         = "not_found"
	OutcomeRemoteError      = "remote_error"
)

var fetchBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Provider metrics
	fetches         *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	resultsReturned *prometheus.HistogramVec
	clientBuilds    *prometheus.CounterVec
	warnings        *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// global registry. Calling it more than once has no further effect.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mostpopular",
		subsystem:        "",
		histogramBuckets: fetchBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetches_total",
		Help:        "Total number of most-popular fetches by provider and outcome",
		ConstLabels: m.constLabels,
	}, []string{"provider", "outcome"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_duration_milliseconds",
		Help:        "Duration of most-popular fetches in milliseconds, backend round-trips included",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"provider"})

	m.resultsReturned = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "results_returned",
		Help:        "Number of results returned per successful fetch",
		Buckets:     prometheus.LinearBuckets(0, 5, 11),
		ConstLabels: m.constLabels,
	}, []string{"provider"})

	m.clientBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_builds_total",
		Help:        "Total number of backend client constructions",
		ConstLabels: m.constLabels,
	}, []string{"provider"})

	m.warnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "provider_warnings_total",
		Help:        "Total number of non-fatal provider diagnostics by reason",
		ConstLabels: m.constLabels,
	}, []string{"provider", "reason"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFetch counts a fetch and observes its duration.
func (m *Manager) RecordFetch(provider, outcome string, durationMs float64) error {
	switch outcome {
	case OutcomeSuccess, OutcomeBadConfiguration, OutcomeNotFound, OutcomeRemoteError:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	m.fetches.WithLabelValues(provider, outcome).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(durationMs)
	return nil
}

// RecordResults observes the size of a successful fetch.
func (m *Manager) RecordResults(provider string, count int) {
	m.resultsReturned.WithLabelValues(provider).Observe(float64(count))
}

// RecordClientBuild counts a backend client construction.
func (m *Manager) RecordClientBuild(provider string) {
	m.clientBuilds.WithLabelValues(provider).Inc()
}

// RecordWarning counts a non-fatal provider diagnostic.
func (m *Manager) RecordWarning(provider, reason string) {
	m.warnings.WithLabelValues(provider, reason).Inc()
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordFetch records a fetch on the global manager.
func RecordFetch(provider, outcome string, durationMs float64) error {
	return globalManager.RecordFetch(provider, outcome, durationMs)
}

// RecordResults records a result count on the global manager.
func RecordResults(provider string, count int) {
	globalManager.RecordResults(provider, count)
}

// RecordClientBuild records a client construction on the global manager.
func RecordClientBuild(provider string) {
	globalManager.RecordClientBuild(provider)
}

// RecordWarning records a provider diagnostic on the global manager.
func RecordWarning(provider, reason string) {
	globalManager.RecordWarning(provider, reason)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
