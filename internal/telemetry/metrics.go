package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TasksEnqueuedTotal counts tasks accepted by TaskBuffer.Push, by kind.
	TasksEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "tasks_enqueued_total",
			Help:      "Total number of tasks accepted onto the task buffer",
		},
		[]string{"kind"},
	)

	// TasksRejectedTotal counts tasks rejected synchronously by Push, by
	// reason (no_space, too_large).
	TasksRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "tasks_rejected_total",
			Help:      "Total number of tasks rejected by the task buffer",
		},
		[]string{"reason"},
	)

	// FramesTransmittedTotal counts radio frames handed to WritePayload.
	FramesTransmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "frames_transmitted_total",
			Help:      "Total number of radio frames written to the radio driver",
		},
		[]string{"kind"},
	)

	// RetransmitsTotal counts TX_FAILED events observed by the engine.
	RetransmitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "retransmits_total",
			Help:      "Total number of TX_FAILED radio events observed",
		},
	)

	// TaskFailuresTotal counts tasks that ended in the Failed state, by
	// kind.
	TaskFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "task_failures_total",
			Help:      "Total number of tasks that ended in the Failed state",
		},
		[]string{"kind"},
	)

	// TaskSuccessesTotal counts tasks that ended in the Succeeded state,
	// by kind.
	TaskSuccessesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hidinject",
			Name:      "task_successes_total",
			Help:      "Total number of tasks that ended in the Succeeded state",
		},
		[]string{"kind"},
	)

	// Ensure metrics are only registered once.
	once sync.Once
)

// InitMetrics registers every collector above with the default Prometheus
// registry. Idempotent: safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			TasksEnqueuedTotal,
			TasksRejectedTotal,
			FramesTransmittedTotal,
			RetransmitsTotal,
			TaskFailuresTotal,
			TaskSuccessesTotal,
		)
	})
}
