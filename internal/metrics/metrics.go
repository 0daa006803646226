// Package metrics exposes Prometheus counters for the complaint pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"civicvoice/backend/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contact lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Collector owns its own registry. All Record methods are safe on a nil
// *Collector so components can run without metrics.
type Collector struct {
	registry *prometheus.Registry
	path     string

	ComplaintsCreated    *prometheus.CounterVec
	ClusterCountFailures prometheus.Counter
	EscalationPromotions *prometheus.CounterVec
	EscalationFailures   prometheus.Counter
	EscalationSweepTime  prometheus.Histogram
	ContactLookups       *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates a Collector with Go runtime and process collectors attached.
func New(cfg config.MetricsConfig) *Collector {
	reg := prometheus.NewRegistry()
	ns := cfg.Namespace

	m := &Collector{
		registry: reg,
		path:     cfg.Path,

		ComplaintsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "complaints_created_total",
			Help:      "Total number of complaints created",
		}, []string{"category"}),
		ClusterCountFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cluster_count_failures_total",
			Help:      "Cluster count queries that failed open to zero",
		}),
		EscalationPromotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "escalation_promotions_total",
			Help:      "Complaints promoted by the escalation sweep",
		}, []string{"level"}),
		EscalationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "escalation_failures_total",
			Help:      "Complaints the escalation sweep failed to promote",
		}),
		EscalationSweepTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "escalation_sweep_duration_seconds",
			Help:      "Duration of escalation sweeps in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ContactLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "contact_lookups_total",
			Help:      "Department contact lookups by outcome",
		}, []string{"outcome"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.ComplaintsCreated,
		m.ClusterCountFailures,
		m.EscalationPromotions,
		m.EscalationFailures,
		m.EscalationSweepTime,
		m.ContactLookups,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Path returns the configured metrics endpoint path.
func (m *Collector) Path() string { return m.path }

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Collector) RecordComplaintCreated(category string) {
	if m == nil {
		return
	}
	m.ComplaintsCreated.WithLabelValues(category).Inc()
}

func (m *Collector) RecordClusterCountFailure() {
	if m == nil {
		return
	}
	m.ClusterCountFailures.Inc()
}

func (m *Collector) RecordPromotion(level int) {
	if m == nil {
		return
	}
	m.EscalationPromotions.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *Collector) RecordPromotionFailure() {
	if m == nil {
		return
	}
	m.EscalationFailures.Inc()
}

func (m *Collector) RecordSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.EscalationSweepTime.Observe(d.Seconds())
}

func (m *Collector) RecordContactLookup(outcome string) {
	if m == nil {
		return
	}
	m.ContactLookups.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
