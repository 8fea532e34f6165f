package bounded

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vnykmshr/goexec/pkg/queue/ringstore"
)

// semaphoreQueue implements Queue with two counting semaphores. The counters
// provide all blocking and backpressure; the mutex guards only the ring
// store mutation. Ordering invariant: a counter acquire always precedes the
// store access it pays for, and the paired release of the opposite counter
// always follows it, so no observer sees the store mutated without a validly
// decremented counter.
type semaphoreQueue[T any] struct {
	mu         sync.Mutex
	store      *ringstore.Store[T]
	emptySlots *semaphore.Weighted
	fullSlots  *semaphore.Weighted
}

// NewSemaphore creates a semaphore-backed bounded queue.
// It panics if the capacity is not positive; use NewSemaphoreSafe for an error.
func NewSemaphore[T any](capacity int) Queue[T] {
	q, err := NewSemaphoreSafe[T](capacity)
	if err != nil {
		panic(err)
	}
	return q
}

// NewSemaphoreSafe creates a semaphore-backed bounded queue, returning an
// error for a non-positive capacity.
func NewSemaphoreSafe[T any](capacity int) (Queue[T], error) {
	store, err := ringstore.NewSafe[T](capacity)
	if err != nil {
		return nil, err
	}

	fullSlots := semaphore.NewWeighted(int64(capacity))
	// Weighted semaphores start full; drain fullSlots so it counts stored
	// items, starting at zero.
	fullSlots.TryAcquire(int64(capacity))

	return &semaphoreQueue[T]{
		store:      store,
		emptySlots: semaphore.NewWeighted(int64(capacity)),
		fullSlots:  fullSlots,
	}, nil
}

func (q *semaphoreQueue[T]) Put(item T) {
	// Acquire with a background context never returns before holding the slot.
	_ = q.emptySlots.Acquire(context.Background(), 1)
	q.insert(item)
}

func (q *semaphoreQueue[T]) Get() T {
	_ = q.fullSlots.Acquire(context.Background(), 1)
	return q.remove()
}

func (q *semaphoreQueue[T]) TryPut(item T) bool {
	if !q.emptySlots.TryAcquire(1) {
		return false
	}
	q.insert(item)
	return true
}

func (q *semaphoreQueue[T]) TryGet() (T, bool) {
	if !q.fullSlots.TryAcquire(1) {
		var zero T
		return zero, false
	}
	return q.remove(), true
}

func (q *semaphoreQueue[T]) Offer(item T, deadline time.Time) bool {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	// A timed acquire that expires holds nothing: the counter and the store
	// are exactly as if the call had never been made.
	if err := q.emptySlots.Acquire(ctx, 1); err != nil {
		return false
	}
	q.insert(item)
	return true
}

func (q *semaphoreQueue[T]) Poll(deadline time.Time) (T, bool) {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	if err := q.fullSlots.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, false
	}
	return q.remove(), true
}

func (q *semaphoreQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Len()
}

func (q *semaphoreQueue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Cap()
}

// insert completes a Put-side operation after emptySlots has been acquired.
func (q *semaphoreQueue[T]) insert(item T) {
	q.mu.Lock()
	q.store.Put(item)
	q.mu.Unlock()
	q.fullSlots.Release(1)
}

// remove completes a Get-side operation after fullSlots has been acquired.
func (q *semaphoreQueue[T]) remove() T {
	q.mu.Lock()
	item, _ := q.store.Get()
	q.mu.Unlock()
	q.emptySlots.Release(1)
	return item
}
