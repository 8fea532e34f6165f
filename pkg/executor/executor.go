package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/common/validation"
	"github.com/vnykmshr/goexec/pkg/queue/bounded"
)

// KeepAliveForever disables idle eviction: idle workers wait indefinitely
// for new work instead of timing out.
const KeepAliveForever time.Duration = -1

// Executor runs submitted callables on a bounded pool of workers and hands
// back futures for result retrieval.
type Executor interface {
	// Submit schedules a callable for execution and returns its future.
	// Returns ErrShutdown after Shutdown has been requested.
	Submit(c *Callable) (*Future, error)

	// SubmitFunc schedules a one-shot function.
	SubmitFunc(fn Func, arg any) (*Future, error)

	// SubmitPeriodic schedules a function that re-runs at the given period
	// until shutdown.
	SubmitPeriodic(fn Func, arg any, period time.Duration) (*Future, error)

	// SubmitCron schedules a function on a cron expression until shutdown.
	SubmitCron(fn Func, arg any, expr string) (*Future, error)

	// Shutdown stops the executor: no new non-periodic work starts once the
	// flag is observed, periodic callables stop at their next period check,
	// pending futures are rejected, and idle workers are unblocked. The
	// returned channel closes once every worker has terminated.
	Shutdown() <-chan struct{}

	// Live returns the current number of live workers.
	Live() int

	// Executing returns the number of workers currently running a callable.
	Executing() int

	// Backlog returns the number of futures waiting in the backlog queue.
	Backlog() int
}

// Config holds configuration options for creating an executor.
type Config struct {
	// CorePoolSize is the number of workers retained even when idle.
	// Must be greater than 0.
	CorePoolSize int

	// MaxPoolSize is the hard ceiling on the worker count, reached only
	// under backlog pressure. Must be >= CorePoolSize.
	MaxPoolSize int

	// KeepAlive is the idle duration after which a non-core worker
	// self-terminates. KeepAliveForever retains idle workers indefinitely.
	KeepAlive time.Duration

	// BacklogCapacity is the size of the pending-futures queue.
	// Must be greater than 0.
	BacklogCapacity int

	// NewBacklog chooses the queue backing for pending futures.
	// Defaults to the monitor backing.
	NewBacklog func(capacity int) (bounded.Queue[*Future], error)

	// RateLimit throttles execution starts across all workers. Optional.
	RateLimit *rate.Limiter

	// OnWorkerStart is called when a worker goroutine starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker goroutine terminates.
	OnWorkerStop func(workerID int)

	// OnTaskComplete is called after every completed execution, including
	// each iteration of a periodic callable.
	OnTaskComplete func(result any, err error, duration time.Duration)

	// OnReject is called when a pending future is evicted without running.
	OnReject func(f *Future)

	// PanicHandler is called when a callable panics. The panic is always
	// recovered and surfaced as the execution error.
	PanicHandler func(recovered any)
}

// executor implements Executor with a worker pool and a bounded
// futures queue.
type executor struct {
	config  Config
	pool    *workerPool
	backlog bounded.Queue[*Future]

	// baseCtx is passed to callables and canceled at shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	workers map[int]*worker
	nextID  atomic.Int64

	shutdownOnce sync.Once
	shutdownDone chan struct{}
}

// New creates an executor. It panics on invalid configuration; use
// NewWithConfig to get an error instead.
func New(corePoolSize, maxPoolSize int, keepAlive time.Duration, backlogCapacity int) Executor {
	e, err := NewWithConfig(Config{
		CorePoolSize:    corePoolSize,
		MaxPoolSize:     maxPoolSize,
		KeepAlive:       keepAlive,
		BacklogCapacity: backlogCapacity,
	})
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithConfig creates an executor with the given configuration.
func NewWithConfig(config Config) (Executor, error) {
	if err := validation.ValidatePositive("executor", "corePoolSize", config.CorePoolSize); err != nil {
		return nil, err
	}
	if err := validation.ValidateAtLeast("executor", "maxPoolSize", config.MaxPoolSize, config.CorePoolSize); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("executor", "backlogCapacity", config.BacklogCapacity); err != nil {
		return nil, err
	}
	if config.KeepAlive != KeepAliveForever {
		if err := validation.ValidatePositiveDuration("executor", "keepAlive", config.KeepAlive); err != nil {
			return nil, err
		}
	}

	newBacklog := config.NewBacklog
	if newBacklog == nil {
		newBacklog = bounded.NewMonitorSafe[*Future]
	}
	backlog, err := newBacklog(config.BacklogCapacity)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &executor{
		config:       config,
		pool:         newWorkerPool(config.CorePoolSize, config.MaxPoolSize),
		backlog:      backlog,
		baseCtx:      ctx,
		cancel:       cancel,
		workers:      make(map[int]*worker),
		shutdownDone: make(chan struct{}),
	}, nil
}

// Submit schedules a callable for execution. It prefers handing the work to
// a new worker within the core size; failing that it queues the future; a
// full backlog grows the pool toward the max; and only when the pool is
// saturated too does it shed load by evicting the oldest pending future.
func (e *executor) Submit(c *Callable) (*Future, error) {
	if c == nil || c.fn == nil {
		return nil, gxerrors.NewValidationError("executor", "callable", c, "cannot be nil").
			WithHint("provide a callable with a non-nil entry point")
	}
	if e.pool.isShutdown() {
		return nil, gxerrors.ErrShutdown
	}
	if err := c.bind(e); err != nil {
		return nil, err
	}

	f := newFuture(c)

	// A worker within the core size executes the future directly.
	if e.pool.tryReserve(false) {
		e.startWorker(f)
		return f, nil
	}

	if e.enqueue(f) {
		return f, nil
	}

	// Backlog full: force the pool toward its max before shedding load.
	if e.pool.tryReserve(true) {
		e.startWorker(f)
		return f, nil
	}

	// Pool and backlog both saturated: evict the oldest pending future to
	// make room. The evicted future is rejected, never silently dropped.
	for {
		if e.enqueue(f) {
			return f, nil
		}
		if old, ok := e.backlog.TryGet(); ok && old != nil {
			e.rejectFuture(old)
		}
	}
}

// enqueue places f on the backlog. A submitter that passed the admission
// check can be descheduled across the entire shutdown drain and land its
// future in a queue no worker will ever read again; re-checking the flag
// after the insert closes that window by rejecting anything stranded.
func (e *executor) enqueue(f *Future) bool {
	if !e.backlog.TryPut(f) {
		return false
	}
	if e.pool.isShutdown() {
		for {
			old, ok := e.backlog.TryGet()
			if !ok {
				break
			}
			if old != nil {
				e.rejectFuture(old)
			}
		}
	}
	return true
}

// SubmitFunc schedules a one-shot function.
func (e *executor) SubmitFunc(fn Func, arg any) (*Future, error) {
	return e.Submit(NewCallable(fn, arg))
}

// SubmitPeriodic schedules a function that re-runs at the given period.
func (e *executor) SubmitPeriodic(fn Func, arg any, period time.Duration) (*Future, error) {
	return e.Submit(NewPeriodicCallable(fn, arg, period))
}

// SubmitCron schedules a function on a cron expression.
func (e *executor) SubmitCron(fn Func, arg any, expr string) (*Future, error) {
	c, err := NewCronCallable(fn, arg, expr)
	if err != nil {
		return nil, err
	}
	return e.Submit(c)
}

// Shutdown initiates shutdown and returns a channel that closes once the
// pool has drained. Safe to call multiple times.
func (e *executor) Shutdown() <-chan struct{} {
	e.shutdownOnce.Do(func() {
		e.pool.requestShutdown()
		// Cancel the context handed to callables: periodic sleeps end
		// immediately and cooperative callables can stop early.
		e.cancel()

		go func() {
			defer close(e.shutdownDone)

			// Unblock workers parked on the backlog by feeding them no-op
			// sentinels until the pool drains. A full backlog parks the
			// injector in Offer until a consumer frees a slot, so more
			// workers than the backlog holds still drain one by one.
			// Sentinels no worker consumes just sit in the queue, which
			// dies with the executor.
			for e.pool.Live() > 0 {
				e.backlog.Offer(nil, time.Now().Add(5*time.Millisecond))
			}
			e.pool.waitIdle()

			// Reject pending futures so no result-waiter hangs forever.
			for {
				f, ok := e.backlog.TryGet()
				if !ok {
					return
				}
				if f != nil {
					e.rejectFuture(f)
				}
			}
		}()
	})
	return e.shutdownDone
}

// Live returns the current live worker count.
func (e *executor) Live() int { return e.pool.Live() }

// Executing returns the number of workers currently running a callable.
func (e *executor) Executing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, w := range e.workers {
		if w.getState() == workerExecuting {
			n++
		}
	}
	return n
}

// Backlog returns the number of futures waiting in the backlog queue.
func (e *executor) Backlog() int { return e.backlog.Len() }

func (e *executor) rejectFuture(f *Future) {
	f.reject()
	if hook := e.config.OnReject; hook != nil {
		hook(f)
	}
}

// startWorker launches a worker goroutine bound to an initial future.
// The caller must already hold a successful pool reservation.
func (e *executor) startWorker(f *Future) {
	w := &worker{id: int(e.nextID.Add(1))}
	w.setState(workerStarting)

	e.mu.Lock()
	e.workers[w.id] = w
	e.mu.Unlock()

	go e.workerLoop(w, f)
}

// workerLoop is the main procedure of a pool worker: execute the bound
// future, then keep pulling pending futures from the backlog until the
// keep-alive policy or shutdown terminates the worker.
func (e *executor) workerLoop(w *worker, f *Future) {
	if hook := e.config.OnWorkerStart; hook != nil {
		hook(w.id)
	}
	defer func() {
		w.setState(workerTerminated)
		e.mu.Lock()
		delete(e.workers, w.id)
		e.mu.Unlock()
		if hook := e.config.OnWorkerStop; hook != nil {
			hook(w.id)
		}
	}()

	for {
		if f != nil {
			e.runFuture(w, f)
			f = nil
		}

		if e.pool.isShutdown() {
			e.pool.release()
			return
		}

		f = e.nextFuture(w)
		if f == nil {
			// Idle timeout or shutdown sentinel. Core workers are refused
			// release while the pool is running and go back to waiting.
			if e.pool.release() {
				return
			}
			continue
		}

		if e.pool.isShutdown() {
			// The flag was raised while we pulled work: reject rather than
			// start new work after shutdown was observed.
			e.rejectFuture(f)
			e.pool.release()
			return
		}
	}
}

// nextFuture blocks for the next pending future according to the keep-alive
// policy. It returns nil on idle timeout or when a shutdown sentinel is
// consumed.
func (e *executor) nextFuture(w *worker) *Future {
	w.setState(workerAwaitingWork)
	if e.config.KeepAlive == KeepAliveForever {
		return e.backlog.Get()
	}
	f, ok := e.backlog.Poll(time.Now().Add(e.config.KeepAlive))
	if !ok {
		return nil
	}
	return f
}

// runFuture executes a future to completion: once for a one-shot callable,
// and iteration by iteration for a periodic one until shutdown.
func (e *executor) runFuture(w *worker, f *Future) {
	c := f.callable
	for {
		if limiter := e.config.RateLimit; limiter != nil {
			if err := limiter.Wait(e.baseCtx); err != nil {
				// Shutdown canceled the wait. A future that never ran is
				// rejected so its outcome is distinguishable from a nil
				// result; published iterations stand.
				if f.Executions() == 0 {
					e.rejectFuture(f)
				} else {
					f.complete()
				}
				return
			}
		}

		w.setState(workerExecuting)
		start := time.Now()
		result, err := e.invoke(c)
		f.publish(result, err)

		if hook := e.config.OnTaskComplete; hook != nil {
			hook(result, err, time.Since(start))
		}

		if !c.Periodic() || e.pool.isShutdown() {
			f.complete()
			return
		}

		// The worker is idle between iterations, not executing.
		w.setState(workerAwaitingWork)
		if !e.sleepUntil(c.next(start)) {
			// Shutdown during the inter-period wait: the task is done for
			// pool-lifecycle purposes, its last result remains observable.
			f.complete()
			return
		}
	}
}

// sleepUntil waits for the next release instant. It reports false when
// shutdown interrupts the wait.
func (e *executor) sleepUntil(t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return !e.pool.isShutdown()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-e.baseCtx.Done():
		return false
	}
}

// invoke runs the callable's entry point, converting a panic into an
// execution error so a misbehaving callable never kills its worker.
func (e *executor) invoke(c *Callable) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if hook := e.config.PanicHandler; hook != nil {
				hook(r)
			}
			result = nil
			err = &gxerrors.OperationError{
				Module:    "executor",
				Operation: "Execute",
				Cause:     fmt.Errorf("callable panicked: %v", r),
			}
		}
	}()
	return c.fn(e.baseCtx, c.arg)
}
