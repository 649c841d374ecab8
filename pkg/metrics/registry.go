// Package metrics exposes Prometheus collectors for the engine and its adapters.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Engine Metrics
	ValidationsTotal  *prometheus.CounterVec
	ConflictsDetected *prometheus.CounterVec
	ConflictsResolved *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	GraphNodes        prometheus.Histogram
	RollbacksTotal    prometheus.Counter
	ReportsPersisted  *prometheus.CounterVec

	// Advisor Metrics
	AdvisorRequestsTotal *prometheus.CounterVec
	AdvisorDuration      *prometheus.HistogramVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initEngineMetrics()
	r.initAdvisorMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) initEngineMetrics() {
	r.ValidationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_validations_total",
			Help: "Structural validations by result",
		},
		[]string{"result"},
	)

	r.ConflictsDetected = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_conflicts_detected_total",
			Help: "Conflicts found by the detectors",
		},
		[]string{"kind", "severity"},
	)

	r.ConflictsResolved = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_conflicts_resolved_total",
			Help: "Conflicts handled by the resolver, by outcome",
		},
		[]string{"kind", "outcome"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_run_duration_seconds",
			Help:    "Duration of analyze and repair runs",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"operation"},
	)

	r.GraphNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arbor_graph_nodes",
			Help:    "Node count of analyzed graphs",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)

	r.RollbacksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_rollbacks_total",
			Help: "Repairs rolled back after a failure in the resolution pass",
		},
	)

	r.ReportsPersisted = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_reports_persisted_total",
			Help: "Report store writes by status",
		},
		[]string{"status"},
	)
}

func (r *Registry) initAdvisorMetrics() {
	r.AdvisorRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_advisor_requests_total",
			Help: "Repair advisor calls by conflict kind and status",
		},
		[]string{"kind", "status"},
	)

	r.AdvisorDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_advisor_duration_seconds",
			Help:    "Repair advisor call latency",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}
