// Package telemetry records Prometheus metrics and OpenTelemetry spans for
// the site's controllers and remote calls.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pthm/hxsite/lib/async"
)

// Config configures Metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "hxsite").
	Namespace string

	// Buckets are the histogram buckets for remote calls.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures Metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) { c.Namespace = ns }
}

// WithBuckets sets the remote call histogram buckets. An empty slice keeps
// the default.
func WithBuckets(b []float64) Option {
	return func(c *Config) {
		if len(b) > 0 {
			c.Buckets = b
		}
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(r prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = r }
}

// Metrics holds the site's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	fetchTransitions *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	remoteDuration   *prometheus.HistogramVec
	activeViews      prometheus.Gauge
	sectionRequests  *prometheus.CounterVec
}

// NewMetrics registers the collectors.
func NewMetrics(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "hxsite",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		fetchTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "fetch_transitions_total",
			Help:      "Gallery fetch state transitions by phase.",
		}, []string{"phase"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "submission_transitions_total",
			Help:      "Newsletter submission state transitions by phase.",
		}, []string{"phase"}),
		remoteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of calls to the photo provider and subscription sink.",
			Buckets:   cfg.Buckets,
		}, []string{"op", "outcome"}),
		activeViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_views",
			Help:      "Page views currently holding controllers.",
		}),
		sectionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "section_requests_total",
			Help:      "Page sections requested, by section name.",
		}, []string{"section"}),
	}
}

// FetchObserver returns a function for async.WithFetchObserver.
func (m *Metrics) FetchObserver() func(async.FetchState) {
	return func(st async.FetchState) {
		if m == nil {
			return
		}
		m.fetchTransitions.WithLabelValues(st.Phase.String()).Inc()
	}
}

// SubmitObserver returns a function for async.WithSubmitObserver.
func (m *Metrics) SubmitObserver() func(async.SubmissionState) {
	return func(st async.SubmissionState) {
		if m == nil {
			return
		}
		m.submissions.WithLabelValues(st.Phase.String()).Inc()
	}
}

// ViewOpened increments the active view gauge.
func (m *Metrics) ViewOpened() {
	if m == nil {
		return
	}
	m.activeViews.Inc()
}

// ViewClosed decrements the active view gauge.
func (m *Metrics) ViewClosed() {
	if m == nil {
		return
	}
	m.activeViews.Dec()
}

// SectionRequested counts a deferred section being requested.
func (m *Metrics) SectionRequested(name string) {
	if m == nil {
		return
	}
	m.sectionRequests.WithLabelValues(name).Inc()
}

func (m *Metrics) observeRemote(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.remoteDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
