package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors for the request pipeline and the web front.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	outboundRequests *prometheus.CounterVec
	outboundDuration *prometheus.HistogramVec
	refreshAttempts  *prometheus.CounterVec
	sessionEvictions prometheus.Counter

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outboundRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_api_requests_total",
			Help: "Requests sent to the remote auth API.",
		}, []string{"method", "status"}),
		outboundDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_api_request_duration_seconds",
			Help:    "Latency of requests to the remote auth API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		refreshAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		sessionEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_session_evictions_total",
			Help: "Sessions cleared after an unrecoverable authentication failure.",
		}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.outboundRequests,
		m.outboundDuration,
		m.refreshAttempts,
		m.sessionEvictions,
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOutbound records one round trip to the remote API. status 0 means
// no response was received.
func (m *Metrics) ObserveOutbound(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outboundRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.outboundDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) RefreshAttempt(outcome string) {
	if m == nil {
		return
	}
	m.refreshAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.sessionEvictions.Inc()
}

// Instrument measures in-flight requests, totals and latency per chi route
// pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes through so /ws can upgrade.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
