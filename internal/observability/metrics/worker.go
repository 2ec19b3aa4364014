package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	eventsTotal    *prometheus.CounterVec
	recordDuration *prometheus.HistogramVec
	eventsInFlight prometheus.Gauge
	deliveryLag    *prometheus.HistogramVec
	statusArrivals *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "lifecycle_events_total",
			Help:      "Consumed lifecycle events by action and result.",
		},
		[]string{"service", "action", "status"},
	)
	recordDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "audit_record_duration_seconds",
			Help:      "Time to persist one lifecycle event to the audit log.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	eventsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "lifecycle_events_in_flight",
			Help:      "Number of lifecycle events being recorded.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	deliveryLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_delivery_lag_seconds",
			Help:      "Delay between a transition committing and the worker receiving its event.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	statusArrivals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "status_arrivals_total",
			Help:      "Documents entering each lifecycle status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(eventsTotal, recordDuration, eventsInFlight, deliveryLag, statusArrivals)

	return &WorkerMetrics{
		registry:       registry,
		service:        service,
		eventsTotal:    eventsTotal,
		recordDuration: recordDuration,
		eventsInFlight: eventsInFlight,
		deliveryLag:    deliveryLag,
		statusArrivals: statusArrivals,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.eventsInFlight.Inc()
}

func (m *WorkerMetrics) FinishEvent(event domain.LifecycleEvent, duration time.Duration, err error) {
	m.eventsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.eventsTotal.WithLabelValues(m.service, string(event.Action), status).Inc()
	m.recordDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if err == nil && event.FromStatus != event.ToStatus {
		m.statusArrivals.WithLabelValues(m.service, string(event.ToStatus)).Inc()
	}
}

func (m *WorkerMetrics) ObserveDeliveryLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.deliveryLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
