// Package monitoring exposes the service's Prometheus metrics on a private
// registry.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "aimapper"

// Metrics holds the collectors. It satisfies analyzer.Recorder.
type Metrics struct {
	handler http.Handler

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	analysesTotal       *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	fetchesTotal        *prometheus.CounterVec
	fetchDuration       prometheus.Histogram
	scores              *prometheus.HistogramVec
	rejectedTotal       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New(namespace string, logger *zap.Logger) *Metrics {
	return NewWithRegistry(namespace, prometheus.NewRegistry(), logger)
}

// NewWithRegistry registers the collectors, plus the Go and process
// collectors, on registry.
func NewWithRegistry(namespace string, registry *prometheus.Registry, logger *zap.Logger) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analyses by input type and outcome",
		},
		[]string{"input_type", "outcome"},
	)

	m.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analyses in seconds, fetches and probes included",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"input_type"},
	)

	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Total number of page fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Duration of page fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.scores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Distribution of SEO and GEO scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"kind"},
	)

	m.rejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_requests_total",
			Help:      "Requests refused by the rate limiter or the monthly quota",
		},
		[]string{"reason"},
	)

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.analysesTotal,
		m.analysisDuration,
		m.fetchesTotal,
		m.fetchDuration,
		m.scores,
		m.rejectedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})

	logger.Info("Prometheus metrics initialized", zap.String("namespace", namespace))
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// RecordRequest counts one served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordRejected counts a request refused for reason ("rate" or "quota").
func (m *Metrics) RecordRejected(reason string) {
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveFetch records one page fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.fetchesTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// ObserveAnalysis records one analysis.
func (m *Metrics) ObserveAnalysis(inputType string, failed bool, d time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.analysesTotal.WithLabelValues(inputType, outcome).Inc()
	m.analysisDuration.WithLabelValues(inputType).Observe(d.Seconds())
}

// ObserveScores records the two totals of a finished analysis.
func (m *Metrics) ObserveScores(seo, geo int) {
	m.scores.WithLabelValues("seo").Observe(float64(seo))
	m.scores.WithLabelValues("geo").Observe(float64(geo))
}
