package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tablaturi"

// UnknownEndpoint labels requests for endpoints no controller declares, so
// arbitrary URLs cannot grow the label set.
const UnknownEndpoint = "unknown"

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rejections  *prometheus.CounterVec
	rateLimited prometheus.Counter
	registry    *prometheus.Registry
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of dispatched API requests.",
			},
			[]string{"controller", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"controller", "endpoint"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_rejections_total",
				Help:      "Requests rejected before reaching a handler, by reason.",
			},
			[]string{"controller", "reason"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of requests refused by the rate limiter.",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.requests,
		m.duration,
		m.rejections,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RegisterDB exports the connection pool statistics of db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// ObserveRequest records one dispatched request.
func (m *Metrics) ObserveRequest(controller, endpoint string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(controller, endpoint, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(controller, endpoint).Observe(elapsed.Seconds())
}

// Reject counts a refused or failed request. reason is one of
// unknown_controller, malformed_body, invalid_request, unknown_endpoint,
// validation, access_denied or handler_error.
func (m *Metrics) Reject(controller, reason string) {
	m.rejections.WithLabelValues(controller, reason).Inc()
}

// RateLimited counts a request refused by the rate limiter.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
