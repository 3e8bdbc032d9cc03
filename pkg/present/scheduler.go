package present

import (
	"context"
	"time"
)

// Scheduler runs plan tasks in order, each at its delay from the moment Run
// starts. It owns no goroutines; callers decide where Run executes.
type Scheduler struct {
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewScheduler returns a scheduler on the wall clock.
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// Run executes fn for every task. It stops early when ctx is cancelled or fn
// returns an error.
func (s *Scheduler) Run(ctx context.Context, plan Plan, fn func(Task) error) error {
	start := s.now()
	for _, task := range plan.Tasks {
		wait := task.Delay - s.now().Sub(start)
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) sleep(ctx context.Context, wait time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if wait <= 0 {
		return nil
	}
	if s.after != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(wait):
			return nil
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
