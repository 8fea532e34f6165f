/*
Package executor provides a bounded worker pool that runs submitted
callables and returns futures for result retrieval.

A callable is a unit of work: an entry point, an opaque argument, and an
optional release schedule (fixed period or cron expression). Submitting a
callable yields a Future the caller can block on:

	exec := executor.New(4, 8, time.Minute, 32)
	defer func() { <-exec.Shutdown() }()

	future, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return expensiveComputation(arg)
	}, payload)
	if err != nil {
		log.Fatal(err)
	}

	result, err := future.Result(context.Background())

# Pool sizing and admission

The pool keeps up to CorePoolSize workers alive even when idle. Submissions
beyond that are queued in a bounded backlog. When the backlog is full the
pool grows toward MaxPoolSize, and only when both pool and backlog are
saturated does the executor shed load by evicting the oldest pending future.
An evicted future completes with ErrRejected, so its result accessor reports
"not computed" instead of blocking forever.

Workers idle longer than KeepAlive terminate, shrinking the pool back toward
the core size; core workers are exempt. KeepAliveForever disables idle
eviction entirely.

# Periodic callables

A periodic callable re-runs until shutdown, each iteration released at the
previous start time plus the period (or the cron schedule's next instant).
Its future tracks the most recent completed iteration:

	future, _ := exec.SubmitPeriodic(poll, endpoint, time.Second)
	for {
		if future.Executions() > seen {
			value, err := future.Latest()
			...
		}
	}

Result blocks until the callable will never run again; after shutdown the
last completed result remains retrievable.

# Shutdown

Shutdown is idempotent. It stops admission, cancels the context passed to
callables, unblocks idle workers, rejects pending futures, and closes the
returned channel once the live worker count reaches zero. Workers
mid-execution finish their current call first; periodic callables stop at
their next period check.

# Metrics

NewWithMetrics and NewWithConfigAndMetrics wrap the executor with Prometheus
counters for submissions, executions, completions, failures, and rejections,
gauges for live workers and backlog depth, and an execution-duration
histogram.
*/
package executor
