package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/present"
	"github.com/goliatone/go-cipherview/pkg/render"
	"github.com/goliatone/go-cipherview/pkg/resultarea"
)

// Service is the remote collaborator a session calls.
type Service interface {
	GenerateSeed(ctx context.Context) (model.SeedResponse, error)
	Transform(ctx context.Context, req model.TransformRequest) (model.TransformResponse, error)
}

// Form is the user input held by a session.
type Form struct {
	Text string
	Seed string
}

// Option customises a Session.
type Option func(*Session)

// WithID sets the session identifier. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithArea injects the result area, mainly for tests.
func WithArea(area *resultarea.Area) Option {
	return func(s *Session) {
		if area != nil {
			s.area = area
		}
	}
}

// WithTick sets the delay between revealed blocks.
func WithTick(tick time.Duration) Option {
	return func(s *Session) {
		s.tick = tick
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext sets the parent context of reveal sequences. Cancelling it
// stops every pending reveal of the session.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.parent = ctx
		}
	}
}

// Session is one interactive form and its result area.
type Session struct {
	id        string
	service   Service
	renderer  render.BlockRenderer
	area      *resultarea.Area
	presenter *present.Presenter
	logger    *zap.Logger
	tick      time.Duration
	parent    context.Context

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	form      Form
	seedSubs  map[int]func(string)
	nextSubID int
}

// New constructs a session. Service and renderer are required.
func New(service Service, renderer render.BlockRenderer, opts ...Option) (*Session, error) {
	if service == nil {
		return nil, errors.New("orchestrator: service is required")
	}
	if renderer == nil {
		return nil, errors.New("orchestrator: renderer is required")
	}

	s := &Session{
		service:  service,
		renderer: renderer,
		logger:   zap.NewNop(),
		parent:   context.Background(),
		seedSubs: make(map[int]func(string)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.area == nil {
		s.area = resultarea.New()
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	s.ctx, s.cancel = context.WithCancel(s.parent)
	s.presenter = present.New(renderer, s.area,
		present.WithTick(s.tick),
		present.WithLogger(s.logger),
	)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Area exposes the result area for subscribers.
func (s *Session) Area() *resultarea.Area {
	return s.area
}

// Renderer returns the block renderer used by the session.
func (s *Session) Renderer() render.BlockRenderer {
	return s.renderer
}

// Form returns a copy of the current form state.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm replaces the form state.
func (s *Session) SetForm(form Form) {
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
}

// SetText updates the text field.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.form.Text = text
	s.mu.Unlock()
}

// SetSeed updates the seed field.
func (s *Session) SetSeed(seed string) {
	s.mu.Lock()
	s.form.Seed = seed
	s.mu.Unlock()
}

// OnSeed registers fn to run whenever RequestSeed writes a new seed. The
// returned function unregisters it.
func (s *Session) OnSeed(fn func(seed string)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.seedSubs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.seedSubs, id)
		s.mu.Unlock()
	}
}

// ShowError replaces the whole result area with one error block. Pending
// reveals are cancelled.
func (s *Session) ShowError(message string) {
	s.area.ReplaceAll(s.errorBlock(message))
}

// RequestSeed fetches a new seed and writes it into the form. An empty seed
// leaves the form untouched. Failures are shown with a fixed message and
// returned to the caller.
func (s *Session) RequestSeed(ctx context.Context) error {
	resp, err := s.service.GenerateSeed(ctx)
	if err != nil {
		s.logger.Error("generate seed", zap.Error(err))
		s.ShowError(MessageSeedFailed)
		return err
	}
	if resp.Seed == "" {
		return nil
	}

	s.mu.Lock()
	s.form.Seed = resp.Seed
	subs := make([]func(string), 0, len(s.seedSubs))
	for _, fn := range s.seedSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(resp.Seed)
	}
	return nil
}

// Submit runs one transformation for operation using the current form state.
// It returns once the service answered; the reveal continues in the
// background and can be awaited through the outcome.
func (s *Session) Submit(ctx context.Context, operation string) Outcome {
	gen := s.area.Clear()

	form := s.Form()
	if form.Text == "" || form.Seed == "" {
		s.ShowError(MessageMissingInput)
		return Outcome{Kind: OutcomeInvalid, Generation: gen, Message: MessageMissingInput}
	}

	if loading, err := s.renderer.Loading(); err != nil {
		s.logger.Warn("render loading indicator", zap.Error(err))
	} else {
		s.area.Append(gen, loading)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.area.Track(gen, cancel)

	logger := s.logger.With(zap.String("operation", operation), zap.Uint64("generation", gen))
	resp, err := s.service.Transform(reqCtx, model.TransformRequest{
		Text:      form.Text,
		Seed:      form.Seed,
		Operation: operation,
	})
	if !s.area.IsCurrent(gen) {
		logger.Debug("submission superseded", zap.Error(err))
		return Outcome{Kind: OutcomeSuperseded, Generation: gen}
	}

	switch {
	case err != nil:
		logger.Error("transform request failed", zap.Error(err))
		return s.settle(gen, Outcome{Kind: OutcomeTransportError, Generation: gen, Message: MessageUnexpected, Err: err})
	case resp.IsError():
		return s.settle(gen, Outcome{Kind: OutcomeServiceError, Generation: gen, Message: resp.Error.Error})
	case resp.Success == nil:
		logger.Error("transform response without payload")
		return s.settle(gen, Outcome{Kind: OutcomeTransportError, Generation: gen, Message: MessageUnexpected, Err: model.ErrMalformedResponse})
	}

	if !s.area.ReplaceIf(gen) {
		return Outcome{Kind: OutcomeSuperseded, Generation: gen}
	}
	run := s.presenter.Present(s.ctx, gen, *resp.Success)
	return Outcome{Kind: OutcomePresented, Generation: gen, Reveal: run}
}

// Close cancels pending work and releases the result area.
func (s *Session) Close() {
	s.cancel()
	s.area.Close()
}

func (s *Session) settle(gen uint64, outcome Outcome) Outcome {
	if !s.area.ReplaceIf(gen, s.errorBlock(outcome.Message)) {
		outcome.Kind = OutcomeSuperseded
	}
	return outcome
}

func (s *Session) errorBlock(message string) render.Block {
	block, err := s.renderer.Error(message)
	if err != nil {
		s.logger.Warn("render error block", zap.Error(err))
		return render.Block{Kind: render.BlockError, Markup: render.Escape(message)}
	}
	return block
}
