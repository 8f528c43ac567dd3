package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealer_crm"

var (
	// AppointmentsCreated counts bookings by branch.
	AppointmentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "appointments",
		Name:      "created_total",
		Help:      "Appointments booked",
	}, []string{"branch"})

	// AppointmentsRescheduled counts successor rows spawned by a reschedule.
	AppointmentsRescheduled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "appointments",
		Name:      "rescheduled_total",
		Help:      "Appointments rescheduled into a successor row",
	})

	// SequenceRetries counts sl_no collisions that forced a retry.
	SequenceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "appointments",
		Name:      "sequence_retries_total",
		Help:      "Inserts retried after an sl_no unique violation",
	})

	// SideEffectFailures counts best-effort writes that failed.
	// Labels: effect (activity_log, reminder_enqueue, reminder_complete, audit)
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "side_effects",
		Name:      "failures_total",
		Help:      "Best-effort side effects that failed without failing the request",
	}, []string{"effect"})

	// TasksCompleted counts reminder completions.
	// Labels: trigger (manual, n1_status)
	TasksCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "completed_total",
		Help:      "Reminder tasks moved to completed",
	}, []string{"trigger"})

	// HTTPRequests counts handled requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled",
	}, []string{"method", "route", "status"})

	// HTTPLatency measures request latency by route template.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
