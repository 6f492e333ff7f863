package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tailored-agentic-units/wordcount/observability"
)

// Option configures a System.
type Option func(*System)

// WithObserver sets the observer that receives actor events. Defaults to
// NoOpObserver.
func WithObserver(observer observability.Observer) Option {
	return func(s *System) { s.observer = observer }
}

// WithScheduler replaces the wall clock used for timers.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *System) { s.scheduler = scheduler }
}

// SpawnOption configures a single actor.
type SpawnOption func(*cell)

// WithReceiveTimeout arms the actor's idle timer from the start.
func WithReceiveTimeout(d time.Duration) SpawnOption {
	return func(c *cell) { c.idle = d }
}

// System owns a set of actors, the goroutines that run them and the
// context that bounds their blocking work.
type System struct {
	name      string
	logger    *slog.Logger
	observer  observability.Observer
	scheduler Scheduler
	metrics   *Metrics

	cells   map[string]*cell
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSystem(ctx context.Context, cfg Config, opts ...Option) *System {
	sysCtx, cancel := context.WithCancel(ctx)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &System{
		name:      cfg.Name,
		logger:    logger,
		observer:  observability.NoOpObserver{},
		scheduler: WallClock{},
		metrics:   NewMetrics(),
		cells:     make(map[string]*cell),
		ctx:       sysCtx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *System) Name() string {
	return s.name
}

// Context is cancelled when the system shuts down.
func (s *System) Context() context.Context {
	return s.ctx
}

func (s *System) Logger() *slog.Logger {
	return s.logger
}

func (s *System) Observer() observability.Observer {
	return s.observer
}

// Spawn starts a top-level actor. Names are unique among live actors.
func (s *System) Spawn(name string, a Actor, opts ...SpawnOption) (Ref, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return s.spawn(nil, name, a, opts...)
}

// Lookup returns the live actor registered under name.
func (s *System) Lookup(name string) (Ref, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.cells[name]
	if !exists {
		return nil, false
	}
	return c, true
}

func (s *System) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Shutdown cancels the system context, which stops every actor after its
// current message, and waits for their goroutines to exit.
func (s *System) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.logger.DebugContext(
		s.ctx,
		"shutting down actor system",
		slog.String("system", s.name),
	)

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("actor system shutdown timeout after %v", timeout)
	}
}

func (s *System) spawn(parent *cell, name string, a Actor, opts ...SpawnOption) (Ref, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSystemStopped
	}
	if _, exists := s.cells[name]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	c := newCell(s, parent, name, a)
	for _, opt := range opts {
		opt(c)
	}
	s.cells[name] = c
	s.wg.Add(1)
	s.mu.Unlock()

	s.metrics.RecordLiveActor(1)
	s.logger.DebugContext(
		s.ctx,
		"actor spawned",
		slog.String("system", s.name),
		slog.String("actor", name),
	)

	go c.run()
	return c, nil
}

func (s *System) unregister(c *cell) {
	s.mu.Lock()
	if s.cells[c.name] == c {
		delete(s.cells, c.name)
	}
	s.mu.Unlock()

	s.metrics.RecordLiveActor(-1)
}

func (s *System) deadLetter(recipient string, message any, sender Ref) {
	s.metrics.RecordDeadLetter(1)
	s.observer.OnEvent(s.ctx, observability.NewEvent(
		EventDeadLetter,
		observability.LevelVerbose,
		recipient,
		map[string]any{
			"message": fmt.Sprintf("%T", message),
			"sender":  refName(sender),
		},
	))
}
