package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/vnykmshr/goexec/internal/testutil"
	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/queue/bounded"
)

func TestNewWithConfigRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"zero core size", Config{CorePoolSize: 0, MaxPoolSize: 1, KeepAlive: time.Second, BacklogCapacity: 1}},
		{"max below core", Config{CorePoolSize: 4, MaxPoolSize: 2, KeepAlive: time.Second, BacklogCapacity: 1}},
		{"zero backlog", Config{CorePoolSize: 1, MaxPoolSize: 1, KeepAlive: time.Second, BacklogCapacity: 0}},
		{"zero keep-alive", Config{CorePoolSize: 1, MaxPoolSize: 1, KeepAlive: 0, BacklogCapacity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithConfig(tt.config)
			testutil.AssertError(t, err)
			testutil.AssertTrue(t, errors.Is(err, gxerrors.ErrInvalidConfiguration),
				"expected a configuration error")
		})
	}
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New should panic on invalid configuration")
		}
	}()
	New(0, 0, time.Second, 1)
}

func TestSubmitRejectsNilCallable(t *testing.T) {
	exec := New(1, 1, KeepAliveForever, 1)
	defer func() { <-exec.Shutdown() }()

	_, err := exec.Submit(nil)
	testutil.AssertError(t, err)

	_, err = exec.Submit(&Callable{})
	testutil.AssertError(t, err)
}

func TestSubmitWithinCoreCreatesAtMostOneWorkerPerTask(t *testing.T) {
	var started atomic.Int64
	exec, err := NewWithConfig(Config{
		CorePoolSize:    4,
		MaxPoolSize:     8,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 4,
		OnWorkerStart:   func(int) { started.Add(1) },
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	futures := make([]*Future, 3)
	for i := range futures {
		f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return arg.(int) * 2, nil
		}, i)
		testutil.AssertNoError(t, err)
		futures[i] = f
	}

	for i, f := range futures {
		v, err := f.Result(context.Background())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, any(i*2))
	}

	testutil.AssertTrue(t, started.Load() <= 3, "no more workers than submitted tasks")
	testutil.AssertTrue(t, exec.Live() <= 3, "live workers should not exceed submitted tasks")
}

func TestBacklogOverflowGrowsPoolThenEvictsOldest(t *testing.T) {
	var rejected atomic.Int64
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     2,
		KeepAlive:       10 * time.Millisecond,
		BacklogCapacity: 1,
		OnReject:        func(*Future) { rejected.Add(1) },
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	gate := make(chan struct{})
	blocked := func(ctx context.Context, arg any) (any, error) {
		<-gate
		return arg, nil
	}

	f1, err := exec.SubmitFunc(blocked, 1) // runs on the core worker
	testutil.AssertNoError(t, err)
	f2, err := exec.SubmitFunc(blocked, 2) // queued
	testutil.AssertNoError(t, err)
	f3, err := exec.SubmitFunc(blocked, 3) // backlog full: pool grows to max
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, exec.Live(), 2)
	testutil.AssertEqual(t, exec.Backlog(), 1)

	// Pool and backlog both saturated: the oldest pending future gives way.
	f4, err := exec.SubmitFunc(blocked, 4)
	testutil.AssertNoError(t, err)

	v, err := f2.Result(context.Background())
	testutil.AssertEqual(t, v, any(nil))
	testutil.AssertEqual(t, err, gxerrors.ErrRejected)
	testutil.AssertEqual(t, rejected.Load(), int64(1))

	close(gate)
	for _, tc := range []struct {
		f    *Future
		want int
	}{{f1, 1}, {f3, 3}, {f4, 4}} {
		v, err := tc.f.Result(context.Background())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, any(tc.want))
	}
}

func TestKeepAliveShrinksPoolToCore(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     3,
		KeepAlive:       20 * time.Millisecond,
		BacklogCapacity: 1,
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	gate := make(chan struct{})
	blocked := func(ctx context.Context, arg any) (any, error) {
		<-gate
		return nil, nil
	}

	// Saturate the backlog so submissions force the pool to its max.
	for i := 0; i < 4; i++ {
		_, err := exec.SubmitFunc(blocked, nil)
		testutil.AssertNoError(t, err)
	}
	testutil.AssertEqual(t, exec.Live(), 3)

	close(gate)
	testutil.Eventually(t, func() bool { return exec.Live() == 1 }, testutil.TestTimeout,
		"idle workers above the core size should terminate")
}

func TestCoreWorkersSurviveIdleTimeout(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    2,
		MaxPoolSize:     4,
		KeepAlive:       15 * time.Millisecond,
		BacklogCapacity: 2,
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	for i := 0; i < 2; i++ {
		f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return nil, nil
		}, nil)
		testutil.AssertNoError(t, err)
		_, err = f.Result(context.Background())
		testutil.AssertNoError(t, err)
	}

	time.Sleep(60 * time.Millisecond) // several keep-alive periods
	testutil.AssertEqual(t, exec.Live(), 2)
}

func TestSubmitAfterShutdownFails(t *testing.T) {
	exec := New(1, 1, KeepAliveForever, 1)
	<-exec.Shutdown()

	_, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return nil, nil
	}, nil)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, err, gxerrors.ErrShutdown)
}

func TestShutdownRejectsPendingFutures(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     1,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 2,
	})
	testutil.AssertNoError(t, err)

	gate := make(chan struct{})
	f1, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		<-gate
		return "ran", nil
	}, nil)
	testutil.AssertNoError(t, err)

	f2, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return "never", nil
	}, nil)
	testutil.AssertNoError(t, err)

	done := exec.Shutdown()
	close(gate)
	<-done

	v, err := f1.Result(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, any("ran"))

	_, err = f2.Result(context.Background())
	testutil.AssertEqual(t, err, gxerrors.ErrRejected)
	testutil.AssertEqual(t, exec.Live(), 0)
}

func TestShutdownIsIdempotent(t *testing.T) {
	exec := New(1, 1, time.Second, 1)
	first := exec.Shutdown()
	second := exec.Shutdown()
	<-first
	<-second
}

func TestPeriodicCallableRunsUntilShutdown(t *testing.T) {
	exec := New(1, 1, KeepAliveForever, 1)

	var runs atomic.Int64
	f, err := exec.SubmitPeriodic(func(ctx context.Context, arg any) (any, error) {
		return runs.Add(1), nil
	}, nil, 10*time.Millisecond)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return f.Executions() >= 3 }, testutil.TestTimeout,
		"periodic callable should complete several iterations")

	<-exec.Shutdown()

	// The last result stays retrievable and no further iterations run.
	latest, err := f.Latest()
	testutil.AssertNoError(t, err)
	v, err := f.Result(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, latest)

	count := f.Executions()
	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, f.Executions(), count)
}

func TestCronCallableRunsImmediatelyThenWaits(t *testing.T) {
	exec := New(1, 1, KeepAliveForever, 1)

	f, err := exec.SubmitCron(func(ctx context.Context, arg any) (any, error) {
		return "tick", nil
	}, nil, "@every 1h")
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return f.Executions() == 1 }, testutil.TestTimeout,
		"first cron iteration should run on submission")

	<-exec.Shutdown()
	v, err := f.Result(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, any("tick"))
}

func TestPanicRecoveryKeepsWorkerAlive(t *testing.T) {
	var recovered atomic.Value
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     1,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 1,
		PanicHandler:    func(r any) { recovered.Store(r) },
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		panic("boom")
	}, nil)
	testutil.AssertNoError(t, err)

	_, execErr := f.Result(context.Background())
	testutil.AssertError(t, execErr)
	var opErr *gxerrors.OperationError
	testutil.AssertTrue(t, errors.As(execErr, &opErr), "panic should surface as an operation error")
	testutil.AssertEqual(t, recovered.Load().(string), "boom")

	// The worker survives and keeps serving.
	f, err = exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return "alive", nil
	}, nil)
	testutil.AssertNoError(t, err)
	v, err := f.Result(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, any("alive"))
}

func TestExecutingCountsBusyWorkers(t *testing.T) {
	exec := New(2, 2, KeepAliveForever, 2)
	defer func() { <-exec.Shutdown() }()

	gate := make(chan struct{})
	_, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		<-gate
		return nil, nil
	}, nil)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return exec.Executing() == 1 }, testutil.TestTimeout,
		"a worker blocked in a callable counts as executing")

	close(gate)
	testutil.Eventually(t, func() bool { return exec.Executing() == 0 }, testutil.TestTimeout,
		"an idle worker does not count as executing")
}

func TestSemaphoreBackedBacklog(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    2,
		MaxPoolSize:     2,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 8,
		NewBacklog:      bounded.NewSemaphoreSafe[*Future],
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	futures := make([]*Future, 10)
	for i := range futures {
		f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return arg.(int) + 100, nil
		}, i)
		testutil.AssertNoError(t, err)
		futures[i] = f
	}

	for i, f := range futures {
		v, err := f.Result(context.Background())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, any(i+100))
	}
}

func TestRateLimitThrottlesExecutionStarts(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     1,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 4,
		RateLimit:       rate.NewLimiter(rate.Every(20*time.Millisecond), 1),
	})
	testutil.AssertNoError(t, err)
	defer func() { <-exec.Shutdown() }()

	start := time.Now()
	futures := make([]*Future, 3)
	for i := range futures {
		f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return nil, nil
		}, nil)
		testutil.AssertNoError(t, err)
		futures[i] = f
	}
	for _, f := range futures {
		_, err := f.Result(context.Background())
		testutil.AssertNoError(t, err)
	}

	// Three starts at one per 20ms cannot finish faster than two intervals.
	testutil.AssertTrue(t, time.Since(start) >= 40*time.Millisecond,
		"rate limiter should space out execution starts")
}

func TestWorkerHooksBalance(t *testing.T) {
	var starts, stops atomic.Int64
	exec, err := NewWithConfig(Config{
		CorePoolSize:    2,
		MaxPoolSize:     4,
		KeepAlive:       10 * time.Millisecond,
		BacklogCapacity: 2,
		OnWorkerStart:   func(int) { starts.Add(1) },
		OnWorkerStop:    func(int) { stops.Add(1) },
	})
	testutil.AssertNoError(t, err)

	for i := 0; i < 6; i++ {
		_, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return nil, nil
		}, nil)
		testutil.AssertNoError(t, err)
	}

	<-exec.Shutdown()
	testutil.AssertEqual(t, exec.Live(), 0)
	// The stop hook runs in the worker goroutine's defer, which may trail
	// the live-count decrement the drain signal waits on.
	testutil.Eventually(t, func() bool { return stops.Load() == starts.Load() }, testutil.TestTimeout,
		"every started worker should report a stop")
}

func TestRateLimitShutdownRejectsNeverExecutedFuture(t *testing.T) {
	exec, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     1,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 2,
		RateLimit:       rate.NewLimiter(rate.Every(time.Hour), 1),
	})
	testutil.AssertNoError(t, err)

	// The first task consumes the only burst token.
	first, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return "first", nil
	}, nil)
	testutil.AssertNoError(t, err)
	v, err := first.Result(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, any("first"))

	// The second is picked up by the worker and blocks in the limiter wait.
	second, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
		return "second", nil
	}, nil)
	testutil.AssertNoError(t, err)
	testutil.Eventually(t, func() bool { return exec.Backlog() == 0 }, testutil.TestTimeout,
		"the worker should pull the second future before shutdown")

	<-exec.Shutdown()

	// Never executed: the outcome must not look like a successful nil result.
	testutil.AssertEqual(t, second.Executions(), uint64(0))
	v, err = second.Result(context.Background())
	testutil.AssertEqual(t, v, any(nil))
	testutil.AssertEqual(t, err, gxerrors.ErrRejected)
}

func TestEnqueueAfterDrainRejectsStrandedFuture(t *testing.T) {
	base, err := NewWithConfig(Config{
		CorePoolSize:    1,
		MaxPoolSize:     1,
		KeepAlive:       KeepAliveForever,
		BacklogCapacity: 2,
	})
	testutil.AssertNoError(t, err)
	e := base.(*executor)
	<-e.Shutdown()

	// A submitter that passed the admission check before the flag was set
	// can insert into the backlog after the drain has already swept it.
	f := newFuture(NewCallable(func(ctx context.Context, arg any) (any, error) {
		return "never", nil
	}, nil))
	testutil.AssertTrue(t, e.enqueue(f), "the backlog has room after the drain")

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	v, err := f.Result(ctx)
	testutil.AssertEqual(t, v, any(nil))
	testutil.AssertEqual(t, err, gxerrors.ErrRejected)
}

func TestExecutingExcludesInterPeriodWait(t *testing.T) {
	exec := New(1, 1, KeepAliveForever, 1)
	defer func() { <-exec.Shutdown() }()

	f, err := exec.SubmitPeriodic(func(ctx context.Context, arg any) (any, error) {
		return nil, nil
	}, nil, 100*time.Millisecond)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return f.Executions() >= 1 }, testutil.TestTimeout,
		"first iteration should complete")
	testutil.Eventually(t, func() bool { return exec.Executing() == 0 }, testutil.TestTimeout,
		"a worker sleeping between iterations does not count as executing")
	testutil.AssertEqual(t, exec.Live(), 1)
}

func TestShutdownDrainsMoreWorkersThanBacklogCapacity(t *testing.T) {
	exec := New(3, 3, KeepAliveForever, 1)

	// Spin up all three core workers; they park on the size-one backlog.
	for i := 0; i < 3; i++ {
		f, err := exec.SubmitFunc(func(ctx context.Context, arg any) (any, error) {
			return nil, nil
		}, nil)
		testutil.AssertNoError(t, err)
		_, err = f.Result(context.Background())
		testutil.AssertNoError(t, err)
	}
	testutil.AssertEqual(t, exec.Live(), 3)

	select {
	case <-exec.Shutdown():
	case <-time.After(testutil.TestTimeout):
		t.Fatal("shutdown should drain every parked worker despite the small backlog")
	}
	testutil.AssertEqual(t, exec.Live(), 0)
}
