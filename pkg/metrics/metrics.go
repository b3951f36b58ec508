package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoutineMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routine_mutation_count",
			Help: "Total number of routine mutations",
		},
		[]string{"operation"}, // operation: create, update, delete, toggle, recycle, reset
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routine_sync_duration_seconds",
			Help:    "Remote document sync duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"direction"}, // direction: save, load
	)

	SyncFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routine_sync_failure_count",
			Help: "Total number of failed remote syncs",
		},
		[]string{"direction"},
	)

	RemindersScheduledCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_count",
			Help: "Total number of reminder alerts scheduled",
		},
	)

	RemindersPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_published_count",
			Help: "Total number of reminder.due events published",
		},
		[]string{"status"}, // status: success, failed
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func IncrementRoutineMutation(operation string) {
	RoutineMutationCount.WithLabelValues(operation).Inc()
}

func RecordSyncDuration(direction string, duration time.Duration) {
	SyncDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

func IncrementSyncFailure(direction string) {
	SyncFailureCount.WithLabelValues(direction).Inc()
}

func IncrementRemindersScheduled(n int) {
	RemindersScheduledCount.Add(float64(n))
}

func IncrementReminderPublished(status string) {
	RemindersPublishedCount.WithLabelValues(status).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
