// Package task runs detached fire-and-forget background work.
// This package is internal and should not be imported by external projects.
package task

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner dispatches detached tasks. A task's completion or failure is
// only observable through the log, never through a value consumed by
// the dispatching loop; the one join point is Wait, called at shutdown.
// There is no cancellation path: a dispatched task runs to completion.
type Runner struct {
	logger *zap.Logger
	group  *errgroup.Group
}

// NewRunner creates a Runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, group: new(errgroup.Group)}
}

// Go dispatches fn on its own goroutine and returns immediately.
// Panics are recovered and logged so a background failure can never
// take down the main loop.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.group.Go(func() error {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", rec))
			}
		}()

		if err := fn(context.Background()); err != nil {
			r.logger.Warn("background task failed",
				zap.String("task", name),
				zap.Error(err))
			return nil
		}
		r.logger.Info("background task completed", zap.String("task", name))
		return nil
	})
}

// Wait blocks until every dispatched task has finished. Called once,
// at session end, before the stores close.
func (r *Runner) Wait() {
	_ = r.group.Wait()
}
