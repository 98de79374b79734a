package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bursary",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bursary",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bursary",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	applicationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bursary",
			Subsystem: "applications",
			Name:      "events_total",
			Help:      "Application lifecycle events (draft_saved, submitted, status_changed, disbursed).",
		},
		[]string{"event"},
	)

	assessmentUpserts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bursary",
			Subsystem: "assessments",
			Name:      "upserts_total",
			Help:      "Committee assessments written.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bursary",
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Notification events by outcome (published, dropped, failed).",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationEvents,
		assessmentUpserts,
		notifications,
	)
}

func IncrementInFlight() { httpInFlight.Inc() }

func DecrementInFlight() { httpInFlight.Dec() }

func RecordHTTPRequest(method, path, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func RecordApplicationEvent(event string) {
	applicationEvents.WithLabelValues(event).Inc()
}

func RecordAssessmentUpsert() {
	assessmentUpserts.Inc()
}

func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}
