package wordcount

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/observability"
)

const jobTimeoutKey = "job-timeout"

var errScannerUnavailable = errors.New("scanner unavailable")

type coordinatorState int

const (
	coordinatorCollecting coordinatorState = iota
	coordinatorRunning
)

func (s coordinatorState) String() string {
	if s == coordinatorRunning {
		return "running"
	}
	return "collecting"
}

// Coordinator runs one job. While collecting it stashes everything except
// StartJob. StartJob fans the batch out to the scanner pool and the
// registry, arms the job timeout and replays the stash. The coordinator
// stops itself once the result has gone to every subscriber.
type Coordinator struct {
	scanner       actor.Ref
	registry      actor.Ref
	jobTimeout    time.Duration
	stashCapacity int

	state   coordinatorState
	receive func(*actor.Context, actor.Envelope)
	stash   []actor.Envelope

	documents   []document.Identity
	statuses    map[document.Identity]Status
	counts      map[document.Identity]document.Frequencies
	failures    map[document.Identity]string
	subscribers []actor.Ref
	started     time.Time
	finished    bool
}

func NewCoordinator(scanner, registry actor.Ref, cfg *Config) *Coordinator {
	c := &Coordinator{
		scanner:       scanner,
		registry:      registry,
		jobTimeout:    cfg.JobTimeout.Std(),
		stashCapacity: cfg.StashCapacity,
		state:         coordinatorCollecting,
	}
	c.receive = c.collecting
	return c
}

func (c *Coordinator) Receive(ctx *actor.Context, env actor.Envelope) {
	c.receive(ctx, env)
}

func (c *Coordinator) collecting(ctx *actor.Context, env actor.Envelope) {
	if msg, ok := env.Message.(StartJob); ok {
		c.start(ctx, msg)
		return
	}

	if c.stashCapacity > 0 && len(c.stash) >= c.stashCapacity {
		ctx.Emit(EventJobStashOverflow, observability.LevelWarning, map[string]any{
			"message":  fmt.Sprintf("%T", env.Message),
			"capacity": c.stashCapacity,
		})
		return
	}

	c.stash = append(c.stash, env)
	ctx.Emit(EventJobStash, observability.LevelVerbose, map[string]any{
		"message": fmt.Sprintf("%T", env.Message),
		"stashed": len(c.stash),
	})
}

func (c *Coordinator) start(ctx *actor.Context, msg StartJob) {
	c.started = time.Now()
	c.documents = document.Unique(msg.Documents)
	c.statuses = make(map[document.Identity]Status, len(c.documents))
	c.counts = make(map[document.Identity]document.Frequencies, len(c.documents))
	c.failures = make(map[document.Identity]string)

	for _, id := range c.documents {
		c.statuses[id] = StatusProcessing
	}

	ctx.Emit(EventJobStart, observability.LevelInfo, map[string]any{
		"documents": len(c.documents),
		"stashed":   len(c.stash),
	})

	c.state = coordinatorRunning
	c.receive = c.running

	for _, id := range c.documents {
		c.registry.Tell(FetchCounts{Document: id}, ctx.Self())
		if !c.scanner.Tell(ScanDocument{Document: id}, ctx.Self()) {
			c.settle(ctx, id, StatusFailedScan, errScannerUnavailable.Error())
		}
	}

	if c.jobTimeout > 0 {
		ctx.StartTimer(jobTimeoutKey, c.jobTimeout, jobTimeout{})
	}

	stash := c.stash
	c.stash = nil
	for _, env := range stash {
		if c.finished {
			return
		}
		c.running(ctx, env)
	}

	if !c.finished {
		c.evaluate(ctx, false)
	}
}

func (c *Coordinator) running(ctx *actor.Context, env actor.Envelope) {
	switch msg := env.Message.(type) {
	case WordsFound, EndOfDocumentReached:
		c.registry.Tell(msg, env.Sender)
	case CountsTabulatedForDocument:
		if c.settle(ctx, msg.Document, StatusCompleted, "") {
			c.counts[msg.Document] = msg.Counts
			c.evaluate(ctx, false)
		}
	case DocumentScanFailed:
		reason := "scan failed"
		if msg.Reason != nil {
			reason = msg.Reason.Error()
		}
		if c.settle(ctx, msg.Document, StatusFailedScan, reason) {
			c.evaluate(ctx, false)
		}
	case jobTimeout:
		c.timeout(ctx)
	case SubscribeResults:
		if env.Sender == nil {
			ctx.Unhandled(env)
			return
		}
		c.subscribers = append(c.subscribers, env.Sender)
	default:
		ctx.Unhandled(env)
	}
}

// settle moves a document out of Processing. Statuses never leave a
// terminal value, so late or duplicate reports are ignored.
func (c *Coordinator) settle(ctx *actor.Context, id document.Identity, status Status, reason string) bool {
	current, known := c.statuses[id]
	if !known || current.Terminal() {
		return false
	}

	c.statuses[id] = status
	if reason != "" {
		c.failures[id] = reason
	}

	level := observability.LevelVerbose
	if status != StatusCompleted {
		level = observability.LevelWarning
	}
	data := map[string]any{
		"document": id.String(),
		"status":   status.String(),
	}
	if reason != "" {
		data["error"] = reason
	}
	ctx.Emit(EventJobDocument, level, data)
	return true
}

func (c *Coordinator) timeout(ctx *actor.Context) {
	var expired int
	for _, id := range c.documents {
		if c.statuses[id] == StatusProcessing {
			c.statuses[id] = StatusFailedTimeout
			c.failures[id] = "job timed out"
			expired++
		}
	}

	ctx.Emit(EventJobTimeout, observability.LevelWarning, map[string]any{
		"timeout": c.jobTimeout.String(),
		"expired": expired,
	})
	c.evaluate(ctx, true)
}

func (c *Coordinator) evaluate(ctx *actor.Context, force bool) {
	if !force {
		for _, status := range c.statuses {
			if !status.Terminal() {
				return
			}
		}
	}

	tally := make(map[string]int)
	for _, status := range c.statuses {
		tally[status.String()]++
	}
	ctx.Emit(EventJobComplete, observability.LevelInfo, map[string]any{
		"documents":   len(c.documents),
		"subscribers": len(c.subscribers),
		"statuses":    tally,
		"duration":    time.Since(c.started).String(),
	})

	for _, subscriber := range c.subscribers {
		subscriber.Tell(c.result(), ctx.Self())
	}

	c.finished = true
	ctx.CancelTimer(jobTimeoutKey)
	ctx.Stop()
}

// result builds a fresh value per subscriber so no two recipients share a
// map.
func (c *Coordinator) result() JobResult {
	tabulated := make([]document.Frequencies, 0, len(c.counts))
	for _, id := range c.documents {
		if counts, ok := c.counts[id]; ok {
			tabulated = append(tabulated, counts)
		}
	}

	return JobResult{
		Documents: slices.Clone(c.documents),
		Counts:    document.Merge(tabulated...),
		Statuses:  maps.Clone(c.statuses),
		Errors:    maps.Clone(c.failures),
		Duration:  time.Since(c.started),
	}
}
