package watch

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Runner is anything with a blocking Run loop, satisfied by both watchers.
type Runner interface {
	Run(ctx context.Context) error
}

// Supervisor runs a set of watchers and stops them together.
type Supervisor struct {
	runners []Runner
}

func NewSupervisor(runners ...Runner) *Supervisor {
	return &Supervisor{runners: runners}
}

// Run starts every watcher and blocks until all loops have exited. The
// combined error carries each watcher's exit reason; context cancellation
// is the normal shutdown path.
func (s *Supervisor) Run(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, runner := range s.runners {
		wg.Add(1)
		go func(r Runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil && ctx.Err() == nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(runner)
	}
	wg.Wait()
	return errs
}
