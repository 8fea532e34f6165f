package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/goexec/pkg/metrics"
)

// MetricsExecutor wraps an Executor with Prometheus metrics collection.
type MetricsExecutor struct {
	exec     Executor
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates an executor with metrics enabled.
func NewWithMetrics(corePoolSize, maxPoolSize int, keepAlive time.Duration, backlogCapacity int, name string) (Executor, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	return NewWithConfigAndMetrics(Config{
		CorePoolSize:    corePoolSize,
		MaxPoolSize:     maxPoolSize,
		KeepAlive:       keepAlive,
		BacklogCapacity: backlogCapacity,
	}, name, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates an executor with custom config and metrics.
// Execution counters are recorded through the config's lifecycle hooks, so
// periodic callables are counted once per iteration.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Executor, error) {
	if !metricsConfig.Enabled {
		return NewWithConfig(config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	prevComplete := config.OnTaskComplete
	config.OnTaskComplete = func(result any, err error, duration time.Duration) {
		registry.TasksExecuted.WithLabelValues(name).Inc()
		if err != nil {
			registry.TasksFailed.WithLabelValues(name).Inc()
		} else {
			registry.TasksCompleted.WithLabelValues(name).Inc()
		}
		registry.TaskExecutionDuration.WithLabelValues(name).Observe(duration.Seconds())
		if prevComplete != nil {
			prevComplete(result, err, duration)
		}
	}

	prevReject := config.OnReject
	config.OnReject = func(f *Future) {
		registry.TasksRejected.WithLabelValues(name).Inc()
		if prevReject != nil {
			prevReject(f)
		}
	}

	base, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	me := &MetricsExecutor{
		exec:     base,
		name:     name,
		registry: registry,
		enabled:  true,
	}
	me.updateGauges()
	return me, nil
}

func (me *MetricsExecutor) updateGauges() {
	if !me.enabled {
		return
	}
	me.registry.WorkersLive.WithLabelValues(me.name).Set(float64(me.exec.Live()))
	me.registry.ExecutorBacklog.WithLabelValues(me.name).Set(float64(me.exec.Backlog()))
}

// Submit schedules a callable for execution.
func (me *MetricsExecutor) Submit(c *Callable) (*Future, error) {
	f, err := me.exec.Submit(c)
	if me.enabled && err == nil {
		me.registry.TasksSubmitted.WithLabelValues(me.name).Inc()
	}
	me.updateGauges()
	return f, err
}

// SubmitFunc schedules a one-shot function.
func (me *MetricsExecutor) SubmitFunc(fn Func, arg any) (*Future, error) {
	return me.Submit(NewCallable(fn, arg))
}

// SubmitPeriodic schedules a function that re-runs at the given period.
func (me *MetricsExecutor) SubmitPeriodic(fn Func, arg any, period time.Duration) (*Future, error) {
	return me.Submit(NewPeriodicCallable(fn, arg, period))
}

// SubmitCron schedules a function on a cron expression.
func (me *MetricsExecutor) SubmitCron(fn Func, arg any, expr string) (*Future, error) {
	c, err := NewCronCallable(fn, arg, expr)
	if err != nil {
		return nil, err
	}
	return me.Submit(c)
}

// Shutdown initiates shutdown of the underlying executor.
func (me *MetricsExecutor) Shutdown() <-chan struct{} {
	done := me.exec.Shutdown()
	me.updateGauges()
	return done
}

// Live returns the current live worker count.
func (me *MetricsExecutor) Live() int {
	n := me.exec.Live()
	if me.enabled {
		me.registry.WorkersLive.WithLabelValues(me.name).Set(float64(n))
	}
	return n
}

// Executing returns the number of workers currently running a callable.
func (me *MetricsExecutor) Executing() int {
	return me.exec.Executing()
}

// Backlog returns the number of futures waiting in the backlog queue.
func (me *MetricsExecutor) Backlog() int {
	n := me.exec.Backlog()
	if me.enabled {
		me.registry.ExecutorBacklog.WithLabelValues(me.name).Set(float64(n))
	}
	return n
}
