package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking workflow metrics
	BookingsCreated prometheus.Counter
	BookingsFailed  *prometheus.CounterVec
	BookingDuration prometheus.Histogram

	// Notification metrics
	NotificationsSent *prometheus.CounterVec

	// Reminder metrics
	RemindersScheduled prometheus.Counter
	RemindersFired     *prometheus.CounterVec
	ReminderLag        prometheus.Histogram

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings persisted",
		}),
		BookingsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_failed_total",
			Help:      "Total number of rejected booking requests",
		}, []string{"reason"}),
		BookingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_duration_seconds",
			Help:      "Time spent processing a booking request",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notification attempts by channel and outcome",
		}, []string{"channel", "status"}),
		RemindersScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_scheduled_total",
			Help:      "Total number of reminder jobs enqueued",
		}),
		RemindersFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Reminder jobs executed by channel and outcome",
		}, []string{"channel", "status"}),
		ReminderLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_fire_lag_seconds",
			Help:      "Delay between a reminder's scheduled and actual fire time",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300},
		}),
		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of store operations",
		}, []string{"operation", "status"}),
		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
