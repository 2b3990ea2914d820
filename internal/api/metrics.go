// internal/api/metrics.go
package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry server's Prometheus collectors. Each Server
// owns its own registry rather than registering against the global
// default, so multiple Servers (as built in tests) don't collide on
// duplicate registration.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	tarballsUploaded *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewMetrics builds and registers the request counters and histograms a
// registry server exposes at GET /metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "charted_requests_total",
				Help: "Total number of HTTP requests handled by the registry server",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "charted_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		tarballsUploaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "charted_tarballs_uploaded_total",
				Help: "Total number of chart release tarballs accepted",
			},
			[]string{"repository_id"},
		),
		registry: registry,
	}

	registry.MustRegister(m.requestsTotal)
	registry.MustRegister(m.requestDuration)
	registry.MustRegister(m.tarballsUploaded)
	return m
}

func (m *Metrics) observeRequest(method, route string, status int, seconds float64) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) observeTarballUpload(repositoryID uint64) {
	m.tarballsUploaded.WithLabelValues(strconv.FormatUint(repositoryID, 10)).Inc()
}

// Handler serves the registry's collectors in the Prometheus exposition
// format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
