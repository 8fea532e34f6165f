package bounded

import (
	"time"
)

// Queue is a fixed-capacity, thread-safe FIFO supporting blocking,
// non-blocking, and deadline-bounded insert and remove operations.
//
// Two interchangeable backings implement this interface: a monitor
// (mutex plus two condition variables, see NewMonitor) and a pair of
// counting semaphores (see NewSemaphore). Both honor the same contract:
// the observable size never exceeds the capacity or drops below zero,
// and items are removed in insertion order.
type Queue[T any] interface {
	// Put inserts item at the tail, blocking while the queue is full.
	Put(item T)

	// Get removes and returns the item at the head, blocking while the
	// queue is empty.
	Get() T

	// TryPut inserts item without blocking. It reports false immediately
	// when the queue is full.
	TryPut(item T) bool

	// TryGet removes the head item without blocking. The second return
	// value is false when the queue is empty.
	TryGet() (T, bool)

	// Offer inserts item, blocking until space is available or the absolute
	// deadline passes, whichever comes first. It reports false on timeout,
	// leaving the queue exactly as if the call had not been attempted.
	Offer(item T, deadline time.Time) bool

	// Poll removes the head item, blocking until an item is available or
	// the absolute deadline passes, whichever comes first. The second
	// return value is false on timeout.
	Poll(deadline time.Time) (T, bool)

	// Len returns the current number of queued items.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int
}

// New creates a bounded queue with the default monitor backing.
// It panics if the capacity is not positive; use NewSafe for an error.
func New[T any](capacity int) Queue[T] {
	return NewMonitor[T](capacity)
}

// NewSafe creates a bounded queue with the default monitor backing,
// returning an error for a non-positive capacity.
func NewSafe[T any](capacity int) (Queue[T], error) {
	return NewMonitorSafe[T](capacity)
}
