// Package metrics provides Prometheus instrumentation for goexec components.
//
// The metrics package provides automatic instrumentation for:
//   - Bounded queues (depth, capacity, operation counts, wait times)
//   - Executors (submitted, executed, completed, failed, rejected tasks,
//     live workers, backlog depth, execution durations)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Bounded queue with metrics
//	queue := bounded.NewWithMetrics[int](64, "ingest_queue")
//
//	// Executor with metrics
//	exec := executor.NewWithMetrics(4, 8, time.Minute, 32, "task_executor")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//	queue := bounded.NewWithConfigAndMetrics[int](64, "ingest_queue", config)
//
// # Available Metrics
//
// Bounded queue metrics:
//
//   - goexec_queue_depth: Current number of items in the queue
//   - goexec_queue_capacity: Fixed capacity of the queue
//   - goexec_queue_operations_total: Queue operations by operation and outcome
//   - goexec_queue_wait_duration_seconds: Time spent blocked in queue operations
//
// Executor metrics:
//
//   - goexec_executor_tasks_submitted_total: Callables submitted
//   - goexec_executor_tasks_executed_total: Executions (periodic callables count per iteration)
//   - goexec_executor_tasks_completed_total: Executions that completed without error
//   - goexec_executor_tasks_failed_total: Executions that returned an error
//   - goexec_executor_tasks_rejected_total: Futures evicted from the backlog
//   - goexec_executor_task_execution_duration_seconds: Execution durations
//   - goexec_executor_workers_live: Live worker goroutines
//   - goexec_executor_backlog: Futures waiting in the backlog queue
package metrics
