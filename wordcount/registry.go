package wordcount

import (
	"fmt"
	"slices"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/observability"
)

// Registry routes document messages to one aggregator per identity,
// creating aggregators on first sight and again after idle eviction. It
// never reads message payloads. Spawned with a receive timeout, it stops
// once it has no live aggregators and the window passes.
type Registry struct {
	idle          time.Duration
	newAggregator func(document.Identity) actor.Actor

	routes map[document.Identity]*route
	names  map[string]document.Identity
}

// route is the live aggregator for one identity. Once a forward fails the
// route drains: later messages wait in buffered until the old aggregator's
// Terminated notice returns its queue, so replay keeps arrival order.
type route struct {
	ref      actor.Ref
	draining bool
	buffered []actor.Envelope
}

// NewRegistry builds a registry. A nil factory uses NewAggregator.
func NewRegistry(cfg *Config, newAggregator func(document.Identity) actor.Actor) *Registry {
	if newAggregator == nil {
		newAggregator = func(id document.Identity) actor.Actor {
			return NewAggregator(id)
		}
	}
	return &Registry{
		idle:          cfg.IdleTimeout.Std(),
		newAggregator: newAggregator,
		routes:        make(map[document.Identity]*route),
		names:         make(map[string]document.Identity),
	}
}

func (r *Registry) Receive(ctx *actor.Context, env actor.Envelope) {
	switch msg := env.Message.(type) {
	case DocumentMessage:
		r.forward(ctx, msg.DocumentIdentity(), env)
	case actor.Terminated:
		r.terminated(ctx, msg)
	case actor.ReceiveTimeout:
		if len(r.routes) == 0 {
			ctx.Stop()
		}
	default:
		ctx.Unhandled(env)
	}
}

func (r *Registry) forward(ctx *actor.Context, id document.Identity, env actor.Envelope) {
	rt, exists := r.routes[id]
	if !exists {
		var err error
		if rt, err = r.spawn(ctx, id); err != nil {
			ctx.Emit(EventRegistryError, observability.LevelError, map[string]any{
				"document": id.String(),
				"message":  fmt.Sprintf("%T", env.Message),
				"error":    err.Error(),
			})
			return
		}
	}

	if !rt.draining && stopped(rt.ref) {
		rt.draining = true
	}
	if rt.draining {
		rt.buffered = append(rt.buffered, env)
		return
	}

	if !rt.ref.Tell(env.Message, env.Sender) {
		rt.draining = true
		rt.buffered = append(rt.buffered, env)
	}
}

func (r *Registry) spawn(ctx *actor.Context, id document.Identity) (*route, error) {
	var opts []actor.SpawnOption
	if r.idle > 0 {
		opts = append(opts, actor.WithReceiveTimeout(r.idle))
	}

	ref, err := ctx.Spawn(id.Name(), r.newAggregator(id), opts...)
	if err != nil {
		return nil, err
	}

	rt := &route{ref: ref}
	r.routes[id] = rt
	r.names[ref.Name()] = id

	ctx.Emit(EventRegistrySpawn, observability.LevelVerbose, map[string]any{
		"document":   id.String(),
		"aggregator": ref.Name(),
	})
	return rt, nil
}

// terminated drops the stale route and, when messages are waiting, starts
// the replacement by replaying them through forward.
func (r *Registry) terminated(ctx *actor.Context, term actor.Terminated) {
	id, known := r.names[term.Ref.Name()]
	if !known {
		return
	}
	rt := r.routes[id]
	if rt == nil || rt.ref != term.Ref {
		return
	}

	delete(r.names, term.Ref.Name())
	delete(r.routes, id)

	replay := slices.Concat(term.Undelivered, rt.buffered)
	if len(replay) == 0 {
		return
	}

	ctx.Emit(EventRegistryRespawn, observability.LevelInfo, map[string]any{
		"document": id.String(),
		"replayed": len(replay),
	})
	for _, env := range replay {
		r.forward(ctx, id, env)
	}
}

func stopped(ref actor.Ref) bool {
	done := actor.Done(ref)
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
