// Package metrics holds the agent's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smallbasket"

// Metrics owns a private registry so several agents (or tests) in one
// process do not collide on the default one. All methods are safe on a nil
// receiver.
type Metrics struct {
	Registry *prometheus.Registry

	apiRequests          *prometheus.CounterVec
	apiDuration          *prometheus.HistogramVec
	connectivityReports  *prometheus.CounterVec
	locationSyncAttempts *prometheus.CounterVec
	workerResults        *prometheus.CounterVec
	notifications        *prometheus.CounterVec
	rateLimited          *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Backend API requests by endpoint and status.",
			},
			[]string{"method", "endpoint", "status"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"method", "endpoint"},
		),
		connectivityReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "connectivity",
				Name:      "reports_total",
				Help:      "Connectivity status reports sent to the backend.",
			},
			[]string{"connected", "outcome"},
		),
		locationSyncAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "location",
				Name:      "sync_attempts_total",
				Help:      "GPS sync attempts by outcome.",
			},
			[]string{"outcome"},
		),
		workerResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "location",
				Name:      "worker_results_total",
				Help:      "Location worker runs by result.",
			},
			[]string{"result"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "received_total",
				Help:      "Push notifications received by type.",
			},
			[]string{"type"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "map",
				Name:      "rate_limited_total",
				Help:      "Calls rejected by the client-side rate limiter.",
			},
			[]string{"call"},
		),
	}

	m.Registry.MustRegister(
		m.apiRequests,
		m.apiDuration,
		m.connectivityReports,
		m.locationSyncAttempts,
		m.workerResults,
		m.notifications,
		m.rateLimited,
	)
	return m
}

// ObserveAPI records one backend call. status 0 means the call never got a
// response.
func (m *Metrics) ObserveAPI(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.apiRequests.WithLabelValues(method, endpoint, code).Inc()
	m.apiDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) ConnectivityReport(connected bool, err error) {
	if m == nil {
		return
	}
	m.connectivityReports.WithLabelValues(strconv.FormatBool(connected), outcome(err)).Inc()
}

func (m *Metrics) LocationSyncAttempt(err error) {
	if m == nil {
		return
	}
	m.locationSyncAttempts.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) WorkerResult(result string) {
	if m == nil {
		return
	}
	m.workerResults.WithLabelValues(result).Inc()
}

func (m *Metrics) NotificationReceived(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) RateLimited(call string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(call).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
