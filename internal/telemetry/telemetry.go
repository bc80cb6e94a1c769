// Package telemetry exposes Prometheus collectors for the gateway.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	previewsTotal                  *prometheus.CounterVec
	upstreamRequestDurationSeconds *prometheus.HistogramVec
	redirectsTotal                 *prometheus.CounterVec
	httpRequestsTotal              *prometheus.CounterVec
	httpRequestDurationSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call more than
// once.
func Init() {
	once.Do(func() {
		previewsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkgateway_previews_total",
				Help: "Total preview documents resolved, labeled by content kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		upstreamRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkgateway_upstream_request_duration_seconds",
				Help:    "Histogram of upstream content API lookup latencies, labeled by kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"kind"},
		)

		redirectsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkgateway_redirects_total",
				Help: "Total HTTP redirects issued, labeled by destination.",
			},
			[]string{"destination"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Preview resolution outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
)

// ObservePreview counts one resolved preview for the given kind.
func ObservePreview(kind string, outcome string) {
	if previewsTotal == nil {
		return
	}
	previewsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveUpstreamRequest records the latency of one upstream lookup.
func ObserveUpstreamRequest(kind string, duration time.Duration) {
	if upstreamRequestDurationSeconds == nil {
		return
	}
	upstreamRequestDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveRedirect counts one issued redirect.
func ObserveRedirect(destination string) {
	if redirectsTotal == nil {
		return
	}
	redirectsTotal.WithLabelValues(destination).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics against
// the matched route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
