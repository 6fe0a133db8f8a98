// Package metrics exposes Prometheus collectors for submissions and dashboard reads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRuntimeCollectors adds Go runtime and process collectors to the registry.
func WithRuntimeCollectors() Option {
	return func(m *Manager) { m.runtime = true }
}

// Manager owns a private registry and every collector registered on it.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	runtime          bool
	registry         *prometheus.Registry

	submissionSteps *prometheus.CounterVec
	submissions     *prometheus.CounterVec

	dashboardLatency *prometheus.HistogramVec
	dashboardErrors  *prometheus.CounterVec
	dashboardCache   *prometheus.CounterVec

	rateLimited *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "feedback",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionSteps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "submission",
		Name:      "steps_total",
		Help:      "Submission write steps by step and outcome",
	}, []string{"step", "status"})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "submission",
		Name:      "dispatched_total",
		Help:      "Submissions that passed the identity write, by engagement path",
	}, []string{"path"})

	m.dashboardLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "dashboard",
		Name:      "fetch_duration_seconds",
		Help:      "Dashboard read latency by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.dashboardErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "dashboard",
		Name:      "fetch_errors_total",
		Help:      "Dashboard reads that failed, by operation",
	}, []string{"op"})

	m.dashboardCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "dashboard",
		Name:      "cache_lookups_total",
		Help:      "Dashboard cache lookups by result",
	}, []string{"result"})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "grpc",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by method",
	}, []string{"method"})

	if m.runtime {
		m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

// Registry is what the /metrics endpoint gathers from.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) SubmissionStep(step, status string) {
	m.submissionSteps.WithLabelValues(step, status).Inc()
}

func (m *Manager) Submission(path string) {
	m.submissions.WithLabelValues(path).Inc()
}

// ObserveDashboardFetch records the latency of op and counts it as failed when err is set.
func (m *Manager) ObserveDashboardFetch(op string, elapsed time.Duration, err error) {
	m.dashboardLatency.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.dashboardErrors.WithLabelValues(op).Inc()
	}
}

func (m *Manager) CacheHit()  { m.dashboardCache.WithLabelValues("hit").Inc() }
func (m *Manager) CacheMiss() { m.dashboardCache.WithLabelValues("miss").Inc() }

func (m *Manager) RateLimited(method string) {
	m.rateLimited.WithLabelValues(method).Inc()
}
