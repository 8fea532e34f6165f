/*
Package goexec provides bounded queues and a futures-based task executor for
concurrent Go applications.

Bounded Queues (pkg/queue):
  - ringstore: Fixed-capacity ring storage (no synchronization)
  - bounded: Thread-safe bounded FIFO with blocking, non-blocking, and
    deadline-bounded operations, backed by either a monitor (mutex plus
    condition variables) or a pair of counting semaphores

Task Execution (pkg/executor):
  - executor: Bounded worker pool executing one-shot, periodic, and
    cron-scheduled callables, with futures for result retrieval

Example usage:

	import (
		"github.com/vnykmshr/goexec/pkg/executor"
		"github.com/vnykmshr/goexec/pkg/queue/bounded"
	)

	queue := bounded.New[int](16) // capacity 16, monitor backing
	queue.Put(42)
	v, ok := queue.TryGet()

	exec := executor.New(4, 8, time.Minute, 32) // core 4, max 8, backlog 32
	future, _ := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return process(arg)
	}, payload)
	result, err := future.Result(context.Background())
*/
package goexec
