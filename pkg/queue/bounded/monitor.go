package bounded

import (
	"sync"
	"time"

	"github.com/vnykmshr/goexec/pkg/queue/ringstore"
)

// monitorQueue implements Queue with one mutex and two condition variables.
// Every waiter re-checks its predicate in a loop after waking, so spurious
// or unrelated wake-ups never break the size invariant.
type monitorQueue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	store    *ringstore.Store[T]
}

// NewMonitor creates a monitor-backed bounded queue.
// It panics if the capacity is not positive; use NewMonitorSafe for an error.
func NewMonitor[T any](capacity int) Queue[T] {
	q, err := NewMonitorSafe[T](capacity)
	if err != nil {
		panic(err)
	}
	return q
}

// NewMonitorSafe creates a monitor-backed bounded queue, returning an error
// for a non-positive capacity.
func NewMonitorSafe[T any](capacity int) (Queue[T], error) {
	store, err := ringstore.NewSafe[T](capacity)
	if err != nil {
		return nil, err
	}
	q := &monitorQueue[T]{store: store}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q, nil
}

func (q *monitorQueue[T]) Put(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.store.Full() {
		q.notFull.Wait()
	}

	q.store.Put(item)
	// Broadcast rather than Signal: a single wake-up could land on a timed
	// waiter that is about to give up, and the wake-up would be lost.
	q.notEmpty.Broadcast()
}

func (q *monitorQueue[T]) Get() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.store.Empty() {
		q.notEmpty.Wait()
	}

	item, _ := q.store.Get()
	q.notFull.Broadcast()
	return item
}

func (q *monitorQueue[T]) TryPut(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.store.Full() {
		return false
	}
	q.store.Put(item)
	q.notEmpty.Broadcast()
	return true
}

func (q *monitorQueue[T]) TryGet() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.store.Get()
	if ok {
		q.notFull.Broadcast()
	}
	return item, ok
}

func (q *monitorQueue[T]) Offer(item T, deadline time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.store.Full() {
		if !q.waitDeadline(q.notFull, deadline) {
			return false
		}
	}

	q.store.Put(item)
	q.notEmpty.Broadcast()
	return true
}

func (q *monitorQueue[T]) Poll(deadline time.Time) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.store.Empty() {
		if !q.waitDeadline(q.notEmpty, deadline) {
			var zero T
			return zero, false
		}
	}

	item, _ := q.store.Get()
	q.notFull.Broadcast()
	return item, true
}

func (q *monitorQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Len()
}

func (q *monitorQueue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Cap()
}

// waitDeadline blocks on c until a broadcast or until the absolute deadline,
// whichever comes first. It reports false once the deadline has passed.
// The caller re-checks its predicate against the same deadline on every
// wake-up, so a wake-up near the deadline is never mistaken for success.
// Must be called with q.mu held.
func (q *monitorQueue[T]) waitDeadline(c *sync.Cond, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}

	// sync.Cond has no timed wait; arm a one-shot broadcast at the deadline
	// so the waiter is guaranteed to wake and re-evaluate.
	timer := time.AfterFunc(remaining, c.Broadcast)
	c.Wait()
	timer.Stop()

	return time.Now().Before(deadline)
}
