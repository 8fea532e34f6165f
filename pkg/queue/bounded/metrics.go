package bounded

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/goexec/pkg/metrics"
)

// Outcome labels recorded for queue operations.
const (
	outcomeOK      = "ok"
	outcomeFull    = "full"
	outcomeEmpty   = "empty"
	outcomeTimeout = "timeout"
)

// MetricsQueue wraps a Queue with Prometheus metrics collection.
type MetricsQueue[T any] struct {
	queue    Queue[T]
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a monitor-backed bounded queue with metrics enabled.
func NewWithMetrics[T any](capacity int, name string) Queue[T] {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	return NewWithConfigAndMetrics[T](capacity, name, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a monitor-backed bounded queue with custom
// metrics configuration.
func NewWithConfigAndMetrics[T any](capacity int, name string, metricsConfig metrics.Config) Queue[T] {
	return InstrumentQueue(NewMonitor[T](capacity), name, metricsConfig)
}

// InstrumentQueue wraps an existing queue (either backing) with metrics.
func InstrumentQueue[T any](queue Queue[T], name string, metricsConfig metrics.Config) Queue[T] {
	if !metricsConfig.Enabled {
		return queue
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	mq := &MetricsQueue[T]{
		queue:    queue,
		name:     name,
		registry: registry,
		enabled:  true,
	}
	mq.registry.QueueCapacity.WithLabelValues(mq.name).Set(float64(queue.Cap()))
	mq.updateDepth()
	return mq
}

func (mq *MetricsQueue[T]) updateDepth() {
	mq.registry.QueueDepth.WithLabelValues(mq.name).Set(float64(mq.queue.Len()))
}

func (mq *MetricsQueue[T]) record(operation, outcome string) {
	mq.registry.QueueOperations.WithLabelValues(mq.name, operation, outcome).Inc()
	mq.updateDepth()
}

func (mq *MetricsQueue[T]) observeWait(operation string, start time.Time) {
	mq.registry.QueueWaitDuration.WithLabelValues(mq.name, operation).Observe(time.Since(start).Seconds())
}

// Put inserts item at the tail, blocking while the queue is full.
func (mq *MetricsQueue[T]) Put(item T) {
	start := time.Now()
	mq.queue.Put(item)
	mq.observeWait("put", start)
	mq.record("put", outcomeOK)
}

// Get removes and returns the head item, blocking while the queue is empty.
func (mq *MetricsQueue[T]) Get() T {
	start := time.Now()
	item := mq.queue.Get()
	mq.observeWait("get", start)
	mq.record("get", outcomeOK)
	return item
}

// TryPut inserts item without blocking.
func (mq *MetricsQueue[T]) TryPut(item T) bool {
	ok := mq.queue.TryPut(item)
	if ok {
		mq.record("try_put", outcomeOK)
	} else {
		mq.record("try_put", outcomeFull)
	}
	return ok
}

// TryGet removes the head item without blocking.
func (mq *MetricsQueue[T]) TryGet() (T, bool) {
	item, ok := mq.queue.TryGet()
	if ok {
		mq.record("try_get", outcomeOK)
	} else {
		mq.record("try_get", outcomeEmpty)
	}
	return item, ok
}

// Offer inserts item, blocking until space or the absolute deadline.
func (mq *MetricsQueue[T]) Offer(item T, deadline time.Time) bool {
	start := time.Now()
	ok := mq.queue.Offer(item, deadline)
	mq.observeWait("offer", start)
	if ok {
		mq.record("offer", outcomeOK)
	} else {
		mq.record("offer", outcomeTimeout)
	}
	return ok
}

// Poll removes the head item, blocking until available or the absolute deadline.
func (mq *MetricsQueue[T]) Poll(deadline time.Time) (T, bool) {
	start := time.Now()
	item, ok := mq.queue.Poll(deadline)
	mq.observeWait("poll", start)
	if ok {
		mq.record("poll", outcomeOK)
	} else {
		mq.record("poll", outcomeTimeout)
	}
	return item, ok
}

// Len returns the current number of queued items.
func (mq *MetricsQueue[T]) Len() int {
	n := mq.queue.Len()
	mq.registry.QueueDepth.WithLabelValues(mq.name).Set(float64(n))
	return n
}

// Cap returns the fixed capacity.
func (mq *MetricsQueue[T]) Cap() int {
	return mq.queue.Cap()
}
