package wordcount

import (
	"fmt"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/observability"
)

type aggregatorState int

const (
	aggregatorActive aggregatorState = iota
	aggregatorCompleted
)

func (s aggregatorState) String() string {
	if s == aggregatorCompleted {
		return "completed"
	}
	return "active"
}

// Aggregator tabulates the words of a single document.
//
// While active it counts WordsFound batches and parks FetchCounts senders.
// EndOfDocumentReached publishes a snapshot to every parked sender and
// switches to the completed behavior, which answers FetchCounts
// immediately. Messages for another identity are reported and dropped.
type Aggregator struct {
	document document.Identity
	state    aggregatorState
	receive  func(*actor.Context, actor.Envelope)

	counts    document.Frequencies
	pending   []actor.Ref
	published document.Frequencies
}

func NewAggregator(id document.Identity) *Aggregator {
	a := &Aggregator{
		document: id,
		state:    aggregatorActive,
		counts:   make(document.Frequencies),
	}
	a.receive = a.active
	return a
}

func (a *Aggregator) Receive(ctx *actor.Context, env actor.Envelope) {
	a.receive(ctx, env)
}

func (a *Aggregator) active(ctx *actor.Context, env actor.Envelope) {
	switch msg := env.Message.(type) {
	case WordsFound:
		if a.owns(ctx, msg) {
			a.counts.Add(msg.Words...)
		}
	case FetchCounts:
		if a.owns(ctx, msg) {
			a.park(ctx, env)
		}
	case EndOfDocumentReached:
		if a.owns(ctx, msg) {
			a.publish(ctx)
		}
	case actor.ReceiveTimeout:
		ctx.Emit(EventAggregatorIdle, observability.LevelWarning, map[string]any{
			"document": a.document.String(),
			"state":    a.state.String(),
			"words":    a.counts.Total(),
			"pending":  len(a.pending),
		})
		ctx.Stop()
	case DocumentMessage:
		if a.owns(ctx, msg) {
			a.discard(ctx, env)
		}
	default:
		ctx.Unhandled(env)
	}
}

func (a *Aggregator) completed(ctx *actor.Context, env actor.Envelope) {
	switch msg := env.Message.(type) {
	case FetchCounts:
		if a.owns(ctx, msg) && env.Sender != nil {
			env.Sender.Tell(a.tabulated(), ctx.Self())
		}
	case actor.ReceiveTimeout:
		ctx.Emit(EventAggregatorIdle, observability.LevelVerbose, map[string]any{
			"document": a.document.String(),
			"state":    a.state.String(),
		})
		ctx.Stop()
	case DocumentMessage:
		if a.owns(ctx, msg) {
			a.discard(ctx, env)
		}
	default:
		ctx.Unhandled(env)
	}
}

func (a *Aggregator) owns(ctx *actor.Context, msg DocumentMessage) bool {
	if msg.DocumentIdentity() == a.document {
		return true
	}

	ctx.Emit(EventAggregatorMisrouted, observability.LevelWarning, map[string]any{
		"document": a.document.String(),
		"received": msg.DocumentIdentity().String(),
		"message":  fmt.Sprintf("%T", msg),
	})
	return false
}

func (a *Aggregator) park(ctx *actor.Context, env actor.Envelope) {
	if env.Sender == nil {
		a.discard(ctx, env)
		return
	}
	a.pending = append(a.pending, env.Sender)
}

func (a *Aggregator) publish(ctx *actor.Context) {
	a.published = a.counts
	a.counts = nil

	reply := a.tabulated()
	for _, subscriber := range a.pending {
		subscriber.Tell(reply, ctx.Self())
	}

	ctx.Emit(EventAggregatorPublished, observability.LevelVerbose, map[string]any{
		"document":    a.document.String(),
		"words":       a.published.Total(),
		"distinct":    len(a.published),
		"subscribers": len(a.pending),
	})

	a.pending = nil
	a.state = aggregatorCompleted
	a.receive = a.completed
}

func (a *Aggregator) tabulated() CountsTabulatedForDocument {
	return CountsTabulatedForDocument{Document: a.document, Counts: a.published.Clone()}
}

func (a *Aggregator) discard(ctx *actor.Context, env actor.Envelope) {
	ctx.Emit(EventAggregatorDiscarded, observability.LevelWarning, map[string]any{
		"document": a.document.String(),
		"state":    a.state.String(),
		"message":  fmt.Sprintf("%T", env.Message),
	})
}
