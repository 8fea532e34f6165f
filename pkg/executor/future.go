package executor

import (
	"context"
	"sync"

	"github.com/vnykmshr/goexec/pkg/common/errors"
)

// Future is the handle for a submitted callable: the synchronization point
// between the submitter and the worker that executes the work. Exactly one
// worker mutates a future; any number of goroutines may wait on it.
//
// For periodic callables the future tracks the most recent completed
// iteration: Executions and Latest let callers poll per-iteration results,
// while Result blocks until the callable will never run again (one-shot
// completion, shutdown, or rejection).
type Future struct {
	callable *Callable

	mu         sync.Mutex
	latest     any
	latestErr  error
	executions uint64
	completed  bool

	// done is closed exactly once when the future completes, giving every
	// waiter a happens-before edge on the result fields.
	done chan struct{}
}

func newFuture(c *Callable) *Future {
	return &Future{callable: c, done: make(chan struct{})}
}

// publish records the result of one completed execution.
func (f *Future) publish(result any, err error) {
	f.mu.Lock()
	f.latest = result
	f.latestErr = err
	f.executions++
	f.mu.Unlock()
}

// complete marks the future completed and wakes all waiters. Idempotent.
func (f *Future) complete() {
	f.mu.Lock()
	if !f.completed {
		f.completed = true
		close(f.done)
	}
	f.mu.Unlock()
}

// reject completes the future without execution. A future that never ran
// reports ErrRejected; one that already produced results keeps them.
func (f *Future) reject() {
	f.mu.Lock()
	if !f.completed {
		if f.executions == 0 {
			f.latest = nil
			f.latestErr = errors.ErrRejected
		}
		f.completed = true
		close(f.done)
	}
	f.mu.Unlock()
}

// Done returns a channel that is closed when the future completes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Completed reports whether the future has completed.
func (f *Future) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Result blocks until the future completes, then returns the final result.
// Calling Result on an already-completed future returns immediately. The
// context bounds only the wait, not the execution.
func (f *Future) Result(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.latestErr
}

// Latest returns the result of the most recent completed execution without
// blocking. It returns zero values while no execution has completed.
func (f *Future) Latest() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.latestErr
}

// Executions returns the number of completed executions so far. Callers can
// poll it to observe successive iterations of a periodic callable.
func (f *Future) Executions() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.executions
}
