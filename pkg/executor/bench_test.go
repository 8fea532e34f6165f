package executor

import (
	"context"
	"testing"
	"time"
)

// BenchmarkSubmitAndWait measures one-shot round-trip latency through the pool.
func BenchmarkSubmitAndWait(b *testing.B) {
	exec := New(4, 4, KeepAliveForever, 64)
	defer func() { <-exec.Shutdown() }()

	fn := func(ctx context.Context, arg any) (any, error) { return arg, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := exec.SubmitFunc(fn, i)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := f.Result(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSubmitParallel measures contended submission throughput.
func BenchmarkSubmitParallel(b *testing.B) {
	exec := New(8, 16, time.Second, 1024)
	defer func() { <-exec.Shutdown() }()

	fn := func(ctx context.Context, arg any) (any, error) { return nil, nil }

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			f, err := exec.SubmitFunc(fn, nil)
			if err != nil {
				b.Fatal(err)
			}
			if _, err := f.Result(context.Background()); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkFutureResult measures waiter wake-up cost on a completed future.
func BenchmarkFutureResult(b *testing.B) {
	f := newFuture(NewCallable(func(ctx context.Context, arg any) (any, error) {
		return nil, nil
	}, nil))
	f.publish(1, nil)
	f.complete()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Result(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
