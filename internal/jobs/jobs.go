// Package jobs runs named fire-and-forget background work. Failures are
// logged, never surfaced to the caller; Wait exists so tests and
// shutdown can drain in-flight jobs.
package jobs

import (
	"context"
	"sync"

	"github.com/lantern-wallet/lantern/internal/config"
)

// Runner executes background jobs.
type Runner struct {
	logger config.Logger
	wg     sync.WaitGroup
}

// NewRunner creates a runner that reports job failures to the logger.
func NewRunner(logger config.Logger) *Runner {
	return &Runner{logger: logger}
}

// Go runs fn on its own goroutine. An error return is logged under the
// job name and otherwise dropped.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(context.Background()); err != nil {
			r.logger.Warnf("background job %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until all jobs started so far have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
