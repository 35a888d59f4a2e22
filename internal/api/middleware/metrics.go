// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkings_http_request_duration_seconds",
		Help:    "Observed HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkings_http_requests_in_flight",
		Help: "Requests currently being served.",
	})

	httpRequestBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkings_http_request_size_bytes",
		Help:    "Observed HTTP request body sizes.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"method", "path"})

	httpResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkings_http_response_size_bytes",
		Help:    "Observed HTTP response body sizes.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"method", "path", "status"})
)

// Metrics records request latency, in-flight count and body sizes,
// labelled by method, route pattern and status.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			path := routePattern(r)
			status := strconv.Itoa(sw.status)

			httpDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			if r.ContentLength > 0 {
				httpRequestBytes.WithLabelValues(r.Method, path).Observe(float64(r.ContentLength))
			}
			if sw.bytes > 0 {
				httpResponseBytes.WithLabelValues(r.Method, path, status).Observe(float64(sw.bytes))
			}
		})
	}
}

// routePattern labels metrics by the chi route pattern, not the raw path.
// Schema IDs in URLs would otherwise explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
