package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-cipherview/pkg/contract"
	"github.com/goliatone/go-cipherview/pkg/orchestrator"
	"github.com/goliatone/go-cipherview/pkg/renderers/html"
)

const (
	defaultHeartbeat = 15 * time.Second
	defaultIdleTTL   = 30 * time.Minute
	maxFormBytes     = 1 << 20
)

// Option customises the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContract publishes the contract operations on the page and rejects
// submissions for anything else.
func WithContract(c *contract.Contract) Option {
	return func(s *Server) {
		s.contract = c
	}
}

// WithTheme applies a theme selection to every page.
func WithTheme(selection *theme.Selection) Option {
	return func(s *Server) {
		s.theme = selection
	}
}

// WithTick sets the reveal delay of new sessions.
func WithTick(tick time.Duration) Option {
	return func(s *Server) {
		if tick > 0 {
			s.tick = tick
		}
	}
}

// WithIdleTTL sets how long an unused session survives. Zero keeps sessions
// until shutdown.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl >= 0 {
			s.idleTTL = ttl
		}
	}
}

// WithSubmitLimit throttles submissions per session. A non-positive rate
// disables throttling.
func WithSubmitLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.submitRate = rate.Inf
			return
		}
		s.submitRate = rate.Limit(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.submitBurst = burst
	}
}

// WithHeartbeat sets the interval of SSE keep-alive comments.
func WithHeartbeat(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.heartbeat = interval
		}
	}
}

// Server serves the interactive page and keeps one orchestrator session per
// page load.
type Server struct {
	service     orchestrator.Service
	renderer    *html.Renderer
	contract    *contract.Contract
	theme       *theme.Selection
	logger      *zap.Logger
	tick        time.Duration
	idleTTL     time.Duration
	heartbeat   time.Duration
	submitRate  rate.Limit
	submitBurst int
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *orchestrator.Session
	limiter  *rate.Limiter
	done     chan struct{}
	lastSeen time.Time
}

// New builds a server calling service and rendering with renderer.
func New(service orchestrator.Service, renderer *html.Renderer, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.New("server: service is required")
	}
	if renderer == nil {
		return nil, errors.New("server: renderer is required")
	}

	s := &Server{
		service:     service,
		renderer:    renderer,
		logger:      zap.NewNop(),
		idleTTL:     defaultIdleTTL,
		heartbeat:   defaultHeartbeat,
		submitRate:  rate.Inf,
		submitBurst: 1,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("POST /sessions/{id}/seed", s.handleSeed)
	mux.HandleFunc("POST /sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("GET /contract/openapi.yaml", s.handleContract)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	return mux
}

// Run listens on addr until ctx is cancelled, expiring idle sessions in the
// background. All sessions are closed on return.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", zap.String("addr", ln.Addr().String()))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.janitor(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close ends every session.
func (s *Server) Close() {
	s.cancel()
	s.mu.Lock()
	entries := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range entries {
		e.close()
	}
}

// SessionCount reports the live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) newSession() (*entry, error) {
	session, err := orchestrator.New(s.service, s.renderer,
		orchestrator.WithTick(s.tick),
		orchestrator.WithLogger(s.logger),
		orchestrator.WithContext(s.ctx),
	)
	if err != nil {
		return nil, err
	}
	e := &entry{
		session:  session,
		limiter:  rate.NewLimiter(s.submitRate, s.submitBurst),
		done:     make(chan struct{}),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[session.ID()] = e
	s.mu.Unlock()
	s.logger.Debug("session created", zap.String("session", session.ID()))
	return e, nil
}

func (s *Server) lookup(r *http.Request) (*entry, error) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	e.lastSeen = s.now()
	return e, nil
}

func (s *Server) touch(e *entry) {
	s.mu.Lock()
	e.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Server) janitor(ctx context.Context) {
	if s.idleTTL <= 0 {
		<-ctx.Done()
		return
	}
	interval := s.idleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireIdle()
		}
	}
}

// expireIdle closes sessions unused for longer than the idle TTL.
func (s *Server) expireIdle() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	var expired []*entry
	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		s.logger.Debug("session expired", zap.String("session", e.session.ID()))
		e.close()
	}
	return len(expired)
}

func (e *entry) close() {
	select {
	case <-e.done:
		return
	default:
	}
	close(e.done)
	e.session.Close()
}
