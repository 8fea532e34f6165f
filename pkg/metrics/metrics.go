// Package metrics provides Prometheus instrumentation for goexec components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for goexec components.
type Registry struct {
	// Bounded Queue Metrics
	QueueDepth        *prometheus.GaugeVec
	QueueCapacity     *prometheus.GaugeVec
	QueueOperations   *prometheus.CounterVec
	QueueWaitDuration *prometheus.HistogramVec

	// Executor Metrics
	TasksSubmitted        *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TasksCompleted        *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TasksRejected         *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	WorkersLive           *prometheus.GaugeVec
	ExecutorBacklog       *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by goexec components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Bounded Queue Metrics
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "queue",
				Name:      "depth",
				Help:      "Current number of items in the queue",
			},
			[]string{"queue_name"},
		),

		QueueCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "queue",
				Name:      "capacity",
				Help:      "Fixed capacity of the queue",
			},
			[]string{"queue_name"},
		),

		QueueOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "queue",
				Name:      "operations_total",
				Help:      "Total number of queue operations by operation and outcome",
			},
			[]string{"queue_name", "operation", "outcome"},
		),

		QueueWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goexec",
				Subsystem: "queue",
				Name:      "wait_duration_seconds",
				Help:      "Time spent blocked in queue operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue_name", "operation"},
		),

		// Executor Metrics
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "tasks_submitted_total",
				Help:      "Total number of callables submitted",
			},
			[]string{"executor_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "tasks_executed_total",
				Help:      "Total number of callable executions (periodic callables count per iteration)",
			},
			[]string{"executor_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "tasks_completed_total",
				Help:      "Total number of callable executions that completed without error",
			},
			[]string{"executor_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "tasks_failed_total",
				Help:      "Total number of callable executions that returned an error",
			},
			[]string{"executor_name"},
		),

		TasksRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "tasks_rejected_total",
				Help:      "Total number of futures evicted from the backlog before execution",
			},
			[]string{"executor_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "task_execution_duration_seconds",
				Help:      "Duration of callable executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"executor_name"},
		),

		WorkersLive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "workers_live",
				Help:      "Current number of live worker goroutines",
			},
			[]string{"executor_name"},
		),

		ExecutorBacklog: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "executor",
				Name:      "backlog",
				Help:      "Current number of futures waiting in the backlog queue",
			},
			[]string{"executor_name"},
		),
	}
}
