// Package engine wires the word-count actors into a runnable service.
//
// The engine initializes from configuration via New: it starts an actor
// system, a shared scanner pool and the default fetch and extract
// collaborators. Each Count call runs one job with its own coordinator and
// registry. Functional options override any collaborator for testing.
//
//	e, err := engine.New(ctx, &cfg)
//	result, err := e.Count(ctx, "https://example.com/a", "https://example.com/b")
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/extract"
	"github.com/tailored-agentic-units/wordcount/fetch"
	"github.com/tailored-agentic-units/wordcount/observability"
	"github.com/tailored-agentic-units/wordcount/wordcount"
)

// Option configures an Engine before its actor system starts.
type Option func(*Engine)

// WithFetcher overrides the config-created HTTP client.
func WithFetcher(f wordcount.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithTokenizer overrides the HTML/text extractor.
func WithTokenizer(t wordcount.Tokenizer) Option {
	return func(e *Engine) { e.tokenizer = t }
}

// WithObserver overrides the observer named in configuration.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithScheduler replaces the wall clock used by actor timers.
func WithScheduler(s actor.Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithLogger sets the logger for runtime diagnostics and the slog observer.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine runs word-count jobs.
type Engine struct {
	cfg       wordcount.Config
	fetcher   wordcount.Fetcher
	tokenizer wordcount.Tokenizer
	observer  observability.Observer
	scheduler actor.Scheduler
	logger    *slog.Logger

	system  *actor.System
	scanner *actor.RoundRobin
}

// New creates an Engine from configuration. ctx bounds the actor system:
// cancelling it is equivalent to Shutdown without the wait.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Engine, error) {
	if err := cfg.WordCount.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg.WordCount,
		fetcher:   fetch.New(&cfg.Fetch),
		tokenizer: extract.New(),
		logger:    cfg.System.Logger,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	if e.observer == nil {
		name := cfg.Observer
		if name == "" {
			name = defaultObserver
		}
		observer, err := observability.GetObserver(name, e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create observer: %w", err)
		}
		e.observer = observer
	}

	sysCfg := cfg.System
	sysCfg.Logger = e.logger

	sysOpts := []actor.Option{actor.WithObserver(e.observer)}
	if e.scheduler != nil {
		sysOpts = append(sysOpts, actor.WithScheduler(e.scheduler))
	}
	e.system = actor.NewSystem(ctx, sysCfg, sysOpts...)

	workers := e.cfg.WorkerCount()
	scanner, err := wordcount.SpawnScannerPool(e.system, "scanner", workers, func() actor.Actor {
		return wordcount.NewScanner(e.fetcher, e.tokenizer, &e.cfg)
	})
	if err != nil {
		_ = e.system.Shutdown(time.Second)
		return nil, fmt.Errorf("failed to start scanner pool: %w", err)
	}
	e.scanner = scanner

	e.logger.InfoContext(
		ctx,
		"engine started",
		slog.String("system", e.system.Name()),
		slog.Int("workers", workers),
		slog.Duration("job_timeout", e.cfg.JobTimeout.Std()),
	)

	return e, nil
}

// Count runs one job over urls and waits for its result. Every URL must be
// an absolute URI; if any is invalid no job starts. Duplicate URLs are
// counted once. The job always completes within its configured timeout;
// ctx only bounds how long the caller waits. Shutdown releases any caller
// still waiting with ErrSystemStopped.
func (e *Engine) Count(ctx context.Context, urls ...string) (wordcount.JobResult, error) {
	ids, err := document.ParseIdentities(urls...)
	if err != nil {
		return wordcount.JobResult{}, err
	}

	jobID := uuid.Must(uuid.NewV7()).String()

	e.observer.OnEvent(ctx, observability.NewEvent(
		EventCountStart,
		observability.LevelInfo,
		"engine.Count",
		map[string]any{
			"job":       jobID,
			"documents": len(ids),
		},
	))

	registry, err := e.system.Spawn(
		"registry-"+jobID,
		wordcount.NewRegistry(&e.cfg, nil),
		actor.WithReceiveTimeout(e.cfg.IdleTimeout.Std()),
	)
	if err != nil {
		return wordcount.JobResult{}, e.countError(ctx, jobID, fmt.Errorf("failed to spawn registry: %w", err))
	}

	job, err := e.system.Spawn("job-"+jobID, wordcount.NewCoordinator(e.scanner, registry, &e.cfg))
	if err != nil {
		return wordcount.JobResult{}, e.countError(ctx, jobID, fmt.Errorf("failed to spawn coordinator: %w", err))
	}

	promise := actor.NewPromise()
	job.Tell(wordcount.SubscribeResults{}, promise)
	job.Tell(wordcount.StartJob{Documents: ids}, nil)

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(e.system.Context(), cancel)
	defer stop()

	reply, err := promise.Await(waitCtx)
	if err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", actor.ErrSystemStopped, err)
		}
		return wordcount.JobResult{}, e.countError(ctx, jobID, err)
	}

	result, ok := reply.(wordcount.JobResult)
	if !ok {
		return wordcount.JobResult{}, e.countError(ctx, jobID, fmt.Errorf("%w: %T", ErrUnexpectedReply, reply))
	}

	e.observer.OnEvent(ctx, observability.NewEvent(
		EventCountComplete,
		observability.LevelInfo,
		"engine.Count",
		map[string]any{
			"job":       jobID,
			"documents": len(result.Documents),
			"words":     result.Counts.Total(),
			"duration":  result.Duration.String(),
		},
	))

	return result, nil
}

func (e *Engine) countError(ctx context.Context, jobID string, err error) error {
	e.observer.OnEvent(ctx, observability.NewEvent(
		EventCountError,
		observability.LevelError,
		"engine.Count",
		map[string]any{
			"job":   jobID,
			"error": err.Error(),
		},
	))
	return err
}

// Config returns the resolved word-count settings.
func (e *Engine) Config() wordcount.Config {
	return e.cfg
}

func (e *Engine) Metrics() actor.MetricsSnapshot {
	return e.system.Metrics()
}

// Shutdown cancels in-flight fetches and waits for every actor to stop.
func (e *Engine) Shutdown(timeout time.Duration) error {
	return e.system.Shutdown(timeout)
}
