package executor

import (
	"sync"
	"sync/atomic"
)

// workerState tracks the lifecycle of a single worker goroutine.
type workerState int32

const (
	workerStarting workerState = iota
	workerExecuting
	workerAwaitingWork
	workerTerminated
)

func (s workerState) String() string {
	switch s {
	case workerStarting:
		return "starting"
	case workerExecuting:
		return "executing"
	case workerAwaitingWork:
		return "awaiting_work"
	case workerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// worker is the bookkeeping record for one worker goroutine.
type worker struct {
	id    int
	state atomic.Int32
}

func (w *worker) setState(s workerState) { w.state.Store(int32(s)) }
func (w *worker) getState() workerState  { return workerState(w.state.Load()) }

// workerPool tracks the live worker count against the core and max limits.
// The count is the only shared mutable state and is guarded by the pool's
// own lock; the shutdown flag is an atomic for cheap reads from worker loops.
type workerPool struct {
	mu   sync.Mutex
	cond *sync.Cond // broadcast on every live-count decrement

	core int
	max  int
	live int

	shutdown atomic.Bool
}

func newWorkerPool(core, max int) *workerPool {
	p := &workerPool{core: core, max: max}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// tryReserve admits one new worker. Below the core size it always admits;
// between core and max it admits only when force is set. This is the
// admission-control knob that lets backlog pressure grow the pool toward
// its max instead of just queueing.
func (p *workerPool) tryReserve(force bool) bool {
	if p.shutdown.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	limit := p.core
	if force {
		limit = p.max
	}
	if p.live >= limit {
		return false
	}
	p.live++
	return true
}

// release is called by a worker about to terminate on idle timeout. Core
// workers are exempt from idle eviction: while the pool is not shutting
// down, a release that would take the pool at or below the core size is
// refused and the worker goes back to waiting. It reports whether
// termination should proceed.
func (p *workerPool) release() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.shutdown.Load() && p.live <= p.core {
		return false
	}
	p.live--
	p.cond.Broadcast()
	return true
}

// requestShutdown sets the shutdown flag. Idempotent; promptly visible to
// all workers.
func (p *workerPool) requestShutdown() {
	p.shutdown.Store(true)
}

// isShutdown is a cheap read of the shutdown flag.
func (p *workerPool) isShutdown() bool {
	return p.shutdown.Load()
}

// Live returns the current live worker count.
func (p *workerPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// waitIdle blocks until the live worker count reaches zero.
func (p *workerPool) waitIdle() {
	p.mu.Lock()
	for p.live > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}
