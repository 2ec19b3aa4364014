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

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

const namespace = "doclc"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	transitionsTotal   *prometheus.CounterVec
	lockConflictsTotal prometheus.Counter
	progressUpdates    prometheus.Counter
	publishRetries     *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: serviceLabel,
		},
	)
	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "lifecycle",
			Name:        "transitions_total",
			Help:        "Lifecycle actions by outcome.",
			ConstLabels: serviceLabel,
		},
		[]string{"action", "outcome"},
	)
	lockConflictsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "lock",
			Name:        "conflicts_total",
			Help:        "Lock acquisitions refused because another worker holds the document.",
			ConstLabels: serviceLabel,
		},
	)
	progressUpdates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "lock",
			Name:        "progress_updates_total",
			Help:        "Completed-unit marks recorded on held locks.",
			ConstLabels: serviceLabel,
		},
	)
	publishRetries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "events",
			Name:        "publish_retries_total",
			Help:        "Retried event publish attempts.",
			ConstLabels: serviceLabel,
		},
		[]string{"operation"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "events",
			Name:        "breaker_open",
			Help:        "1 while the publish circuit breaker is open or half-open.",
			ConstLabels: serviceLabel,
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		transitionsTotal,
		lockConflictsTotal,
		progressUpdates,
		publishRetries,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		service:            service,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		transitionsTotal:   transitionsTotal,
		lockConflictsTotal: lockConflictsTotal,
		progressUpdates:    progressUpdates,
		publishRetries:     publishRetries,
		breakerState:       breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests by chi route pattern so document ids never become label values.
func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := routePattern(r)
		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func (m *HTTPServerMetrics) RecordTransition(action domain.Action, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case domain.IsKind(err, domain.ErrInvalidTransition):
		outcome = "invalid_transition"
	case domain.IsKind(err, domain.ErrAlreadyLocked):
		outcome = "locked"
	case domain.IsKind(err, domain.ErrNotLockHolder):
		outcome = "not_holder"
	default:
		outcome = "error"
	}
	m.transitionsTotal.WithLabelValues(string(action), outcome).Inc()
	if domain.IsKind(err, domain.ErrAlreadyLocked) {
		m.lockConflictsTotal.Inc()
	}
}

func (m *HTTPServerMetrics) RecordProgressUpdate() {
	m.progressUpdates.Inc()
}

// RetryAttempt and BreakerStateChanged let the metrics observe the event publish executor.
func (m *HTTPServerMetrics) RetryAttempt(operation string) {
	m.publishRetries.WithLabelValues(operation).Inc()
}

func (m *HTTPServerMetrics) BreakerStateChanged(operation string, state string) {
	value := 1.0
	if state == "closed" {
		value = 0
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
