package actor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/wordcount/observability"
)

// Actor processes one message at a time. Implementations keep their state
// in their own fields; the runtime guarantees Receive is never called
// concurrently for the same actor.
type Actor interface {
	Receive(ctx *Context, envelope Envelope)
}

// ActorFunc adapts a function to the Actor interface.
type ActorFunc func(ctx *Context, envelope Envelope)

func (f ActorFunc) Receive(ctx *Context, envelope Envelope) {
	f(ctx, envelope)
}

// Ref addresses something that accepts messages: an actor, a router or a
// promise. Tell reports whether the message was accepted.
type Ref interface {
	Name() string
	Tell(message any, sender Ref) bool
}

// Terminated is delivered to a parent when one of its children stops.
// Undelivered holds the messages that were still queued in the child's
// mailbox, in arrival order.
type Terminated struct {
	Ref         Ref
	Undelivered []Envelope
}

// ReceiveTimeout is delivered when an actor with a receive timeout has not
// received a message within the window.
type ReceiveTimeout struct{}

// Done returns a channel closed when the actor behind ref has stopped. It
// returns nil for refs that are not actors.
func Done(ref Ref) <-chan struct{} {
	if c, ok := ref.(*cell); ok {
		return c.done
	}
	return nil
}

const idleTimerKey = "actor.receive-timeout"

type cell struct {
	name    string
	actor   Actor
	system  *System
	parent  *cell
	mailbox *Mailbox[Envelope]
	timers  *timers
	idle    time.Duration

	stopping bool
	done     chan struct{}
}

func newCell(system *System, parent *cell, name string, a Actor) *cell {
	c := &cell{
		name:    name,
		actor:   a,
		system:  system,
		parent:  parent,
		mailbox: NewMailbox[Envelope](),
		done:    make(chan struct{}),
	}
	c.timers = newTimers(c, system.scheduler)
	return c
}

func (c *cell) Name() string {
	return c.name
}

func (c *cell) Tell(message any, sender Ref) bool {
	if !c.mailbox.Send(NewEnvelope(message, sender)) {
		c.system.deadLetter(c.name, message, sender)
		return false
	}
	c.system.metrics.RecordMessageSent(1)
	return true
}

func (c *cell) run() {
	defer c.system.wg.Done()

	ctx := &Context{cell: c}
	c.armIdle()

	for !c.stopping && c.system.ctx.Err() == nil {
		envelope, err := c.mailbox.Receive(c.system.ctx)
		if err != nil {
			break
		}

		if fired, ok := envelope.Message.(timerFired); ok {
			message, current := c.timers.accept(fired)
			if !current {
				continue
			}
			envelope.Message = message
		}

		c.system.metrics.RecordMessageRecv(1)
		c.invoke(ctx, envelope)
		if !c.stopping {
			c.armIdle()
		}
	}

	c.terminate()
}

func (c *cell) invoke(ctx *Context, envelope Envelope) {
	defer func() {
		if r := recover(); r != nil {
			c.system.logger.ErrorContext(
				c.system.ctx,
				"actor panicked",
				slog.String("actor", c.name),
				slog.String("message", fmt.Sprintf("%T", envelope.Message)),
				slog.Any("panic", r),
			)
			c.stopping = true
		}
	}()

	c.actor.Receive(ctx, envelope)
}

func (c *cell) armIdle() {
	if c.idle > 0 {
		c.timers.start(idleTimerKey, c.idle, ReceiveTimeout{})
	}
}

func (c *cell) terminate() {
	queued := c.mailbox.Close()
	c.timers.cancelAll()
	c.system.unregister(c)
	close(c.done)

	undelivered := make([]Envelope, 0, len(queued))
	for _, envelope := range queued {
		if _, internal := envelope.Message.(timerFired); !internal {
			undelivered = append(undelivered, envelope)
		}
	}

	c.system.logger.DebugContext(
		c.system.ctx,
		"actor stopped",
		slog.String("actor", c.name),
		slog.Int("undelivered", len(undelivered)),
	)

	if c.parent != nil && c.parent.Tell(Terminated{Ref: c, Undelivered: undelivered}, nil) {
		return
	}
	for _, envelope := range undelivered {
		c.system.deadLetter(c.name, envelope.Message, envelope.Sender)
	}
}

// Context gives an actor access to its own runtime facilities while it
// handles a message. It must not be retained or used from other goroutines.
type Context struct {
	cell *cell
}

func (c *Context) Self() Ref {
	return c.cell
}

func (c *Context) Name() string {
	return c.cell.name
}

// Context returns the system context. It is cancelled when the system shuts
// down and is the parent for any blocking work the actor performs.
func (c *Context) Context() context.Context {
	return c.cell.system.ctx
}

func (c *Context) Logger() *slog.Logger {
	return c.cell.system.logger
}

// Spawn starts a child actor named "<self>/<name>". The child's
// termination is reported back to this actor as Terminated.
func (c *Context) Spawn(name string, a Actor, opts ...SpawnOption) (Ref, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return c.cell.system.spawn(c.cell, c.cell.name+"/"+name, a, opts...)
}

// Stop ends the actor after the current message. Messages still queued are
// handed to the parent in Terminated, or counted as dead letters.
func (c *Context) Stop() {
	c.cell.stopping = true
}

// StartTimer delivers message to self after d. Starting an existing key
// replaces the earlier timer.
func (c *Context) StartTimer(key string, d time.Duration, message any) {
	c.cell.timers.start(key, d, message)
}

func (c *Context) CancelTimer(key string) {
	c.cell.timers.cancel(key)
}

// SetReceiveTimeout arms the idle timer; zero disables it.
func (c *Context) SetReceiveTimeout(d time.Duration) {
	c.cell.idle = d
	if d <= 0 {
		c.cell.timers.cancel(idleTimerKey)
	}
}

// Emit sends an event to the system observer with this actor as source.
func (c *Context) Emit(eventType observability.EventType, level observability.Level, data map[string]any) {
	c.cell.system.observer.OnEvent(
		c.cell.system.ctx,
		observability.NewEvent(eventType, level, c.cell.name, data),
	)
}

// Unhandled reports a message the actor does not understand. The message
// is dropped.
func (c *Context) Unhandled(envelope Envelope) {
	c.Emit(EventUnhandled, observability.LevelWarning, map[string]any{
		"message": fmt.Sprintf("%T", envelope.Message),
		"sender":  refName(envelope.Sender),
	})
}
