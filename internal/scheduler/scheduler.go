package scheduler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/s3batch/s3types"
)

// Task is one unit of work, identified by its index in the batch.
// Tasks record their own results; they never abort their siblings.
type Task func(ctx context.Context, index int)

// Scheduler runs n tasks and waits for all of them.
type Scheduler interface {
	Run(ctx context.Context, n int, task Task)
	Mode() s3types.SchedulingMode
}

// New returns the scheduler for mode. Unknown modes are rejected.
//
//nolint:ireturn // callers select the model at runtime
func New(mode s3types.SchedulingMode) (Scheduler, error) {
	switch mode {
	case "", s3types.SchedulingParallel:
		return Parallel{}, nil
	case s3types.SchedulingSequential:
		return Sequential{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling mode %q", mode)
	}
}

// Parallel launches every task in its own goroutine.
type Parallel struct{}

// Run implements Scheduler.
func (Parallel) Run(ctx context.Context, n int, task Task) {
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			task(ctx, i)
			return nil
		})
	}
	// tasks never return errors; Wait is only the join point
	_ = g.Wait()
}

// Mode implements Scheduler.
func (Parallel) Mode() s3types.SchedulingMode { return s3types.SchedulingParallel }

// Sequential runs tasks one after another in index order.
type Sequential struct{}

// Run implements Scheduler.
func (Sequential) Run(ctx context.Context, n int, task Task) {
	for i := 0; i < n; i++ {
		task(ctx, i)
	}
}

// Mode implements Scheduler.
func (Sequential) Mode() s3types.SchedulingMode { return s3types.SchedulingSequential }
