/*
Package bounded provides a fixed-capacity, thread-safe FIFO queue with
blocking, non-blocking, and deadline-bounded operations.

Two interchangeable backings implement the same Queue interface:

  - Monitor (NewMonitor): one mutex and two condition variables,
    "not empty" and "not full". Waiters loop on their predicate, so
    spurious wake-ups are harmless.
  - Semaphore (NewSemaphore): two counting semaphores tracking empty and
    full slots (golang.org/x/sync/semaphore), with a mutex guarding only
    the ring-store mutation.

Basic usage:

	queue := bounded.New[string](8) // monitor backing
	queue.Put("job")                // blocks while full
	item := queue.Get()             // blocks while empty

Non-blocking and timed variants:

	if !queue.TryPut("job") {
		// queue full, did not block
	}

	if item, ok := queue.Poll(time.Now().Add(100 * time.Millisecond)); ok {
		process(item)
	}

Deadlines are absolute wall-clock instants: a waiter woken early re-checks
its predicate against the same deadline rather than restarting the wait.
A timed operation that expires leaves the queue exactly as if it had never
been attempted.

Guarantees (both backings):

  - 0 <= Len() <= Cap() at all times
  - FIFO removal order relative to insertion order
  - no lost or duplicated items under any interleaving
  - TryPut/TryGet never block

Metrics:

	queue := bounded.NewWithMetrics[int](64, "ingest_queue")

wraps the queue with Prometheus counters for every operation and outcome,
a depth gauge, and wait-duration histograms. InstrumentQueue wraps an
existing queue of either backing.
*/
package bounded
