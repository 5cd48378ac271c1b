package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "raven"

// Metrics holds the server collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	certExpiry prometheus.Gauge
}

// NewMetrics registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by listener, route and status code.",
		}, []string{"listener", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by listener and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"listener", "route"}),
		certExpiry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tls",
			Name:      "certificate_expiry_timestamp_seconds",
			Help:      "NotAfter of the served certificate as a Unix timestamp.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.certExpiry)
	return m
}

// Observe records one finished request.
func (m *Metrics) Observe(listener, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(listener, route, statusLabel(code)).Inc()
	m.duration.WithLabelValues(listener, route).Observe(elapsed.Seconds())
}

// SetCertificateExpiry publishes the certificate NotAfter.
func (m *Metrics) SetCertificateExpiry(t time.Time) {
	m.certExpiry.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func statusLabel(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}
