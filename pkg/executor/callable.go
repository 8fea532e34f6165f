package executor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/common/validation"
)

// Func is the entry-point contract a callable supplies: a function from an
// opaque argument to a result. Periodic callables must be re-entrant across
// iterations. The context is canceled when the owning executor shuts down;
// long-running callables may observe it to stop early, or ignore it and run
// to completion.
type Func func(ctx context.Context, arg any) (any, error)

// cronParser accepts the standard five-field format plus descriptors
// such as @hourly and @every.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Callable is a schedulable unit of work: an entry point, an argument, and
// an optional release schedule. A zero period and nil schedule mean the
// callable runs exactly once. Callables are immutable once submitted except
// for the back-reference to their owning executor, set at submission.
type Callable struct {
	fn       Func
	arg      any
	period   time.Duration
	schedule cron.Schedule

	mu   sync.Mutex
	exec *executor
}

// NewCallable creates a one-shot callable.
func NewCallable(fn Func, arg any) *Callable {
	return &Callable{fn: fn, arg: arg}
}

// NewPeriodicCallable creates a callable that re-runs forever at the given
// period until the owning executor shuts down. Each iteration is released at
// the previous iteration's start time plus the period. A non-positive period
// yields a one-shot callable.
func NewPeriodicCallable(fn Func, arg any, period time.Duration) *Callable {
	if period <= 0 {
		return NewCallable(fn, arg)
	}
	return &Callable{fn: fn, arg: arg, period: period}
}

// NewCronCallable creates a callable whose release instants follow a cron
// expression ("*/5 * * * *", "@hourly", ...). It re-runs until the owning
// executor shuts down.
func NewCronCallable(fn Func, arg any, expr string) (*Callable, error) {
	if err := validation.ValidateNotEmpty("executor", "cron", expr); err != nil {
		return nil, err
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.NewValidationError("executor", "cron", expr, "invalid cron expression").
			WithHint(err.Error())
	}
	return &Callable{fn: fn, arg: arg, schedule: schedule}, nil
}

// Period returns the fixed re-run period, zero for one-shot and cron callables.
func (c *Callable) Period() time.Duration { return c.period }

// Periodic reports whether the callable re-runs after completing an iteration.
func (c *Callable) Periodic() bool { return c.period > 0 || c.schedule != nil }

// next computes the release instant of the iteration following one that
// started at the given time.
func (c *Callable) next(start time.Time) time.Time {
	if c.schedule != nil {
		return c.schedule.Next(start)
	}
	return start.Add(c.period)
}

// bind attaches the callable to its owning executor. A callable may be
// submitted exactly once.
func (c *Callable) bind(e *executor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exec != nil {
		return errors.NewValidationError("executor", "callable", c, "already submitted").
			WithHint("a callable may be submitted to one executor, once")
	}
	c.exec = e
	return nil
}
