package present

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/render"
)

// Target is the result area surface the presenter writes to.
type Target interface {
	Append(gen uint64, block render.Block) bool
	Track(gen uint64, cancel context.CancelFunc) bool
}

// Option customises a Presenter.
type Option func(*Presenter)

// WithTick sets the delay between reveals.
func WithTick(tick time.Duration) Option {
	return func(p *Presenter) {
		if tick > 0 {
			p.tick = tick
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s *Scheduler) Option {
	return func(p *Presenter) {
		if s != nil {
			p.scheduler = s
		}
	}
}

// Presenter reveals success responses into a Target.
type Presenter struct {
	renderer  render.BlockRenderer
	target    Target
	tick      time.Duration
	scheduler *Scheduler
	logger    *zap.Logger
}

// New constructs a presenter writing blocks produced by renderer into target.
func New(renderer render.BlockRenderer, target Target, opts ...Option) *Presenter {
	p := &Presenter{
		renderer:  renderer,
		target:    target,
		tick:      DefaultTick,
		scheduler: NewScheduler(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Tick reports the configured reveal delay.
func (p *Presenter) Tick() time.Duration {
	return p.tick
}

// Present starts the reveal of success under generation gen and returns
// immediately. The sequence stops when ctx is done or when gen stops being
// the current generation of the target.
func (p *Presenter) Present(ctx context.Context, gen uint64, success model.SuccessResponse) *Run {
	plan := BuildPlan(success, p.tick)
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{done: make(chan struct{}), cancel: cancel}

	if !p.target.Track(gen, cancel) {
		run.finish(ErrStale)
		return run
	}

	go func() {
		err := p.scheduler.Run(runCtx, plan, func(task Task) error {
			block, err := task.Render(p.renderer)
			if err != nil {
				p.logger.Error("render reveal block",
					zap.String("kind", string(task.Kind)),
					zap.Uint64("generation", gen),
					zap.Error(err),
				)
				return nil
			}
			if !p.target.Append(gen, block) {
				return ErrStale
			}
			return nil
		})
		if errors.Is(err, context.Canceled) && runCtx.Err() != nil && ctx.Err() == nil {
			err = ErrStale
		}
		cancel()
		run.finish(err)
	}()
	return run
}

// Run tracks one reveal sequence.
type Run struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

// Done is closed once the sequence has finished or was stopped.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the sequence ends or ctx is done.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is nil when every block was revealed. It is only meaningful after Done
// is closed.
func (r *Run) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Stop cancels the sequence.
func (r *Run) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Run) finish(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}
