// Package actor is a small in-process actor runtime: every actor owns a
// private state value that only its own goroutine touches, and all
// communication happens by telling immutable messages to a Ref.
//
// # Processing model
//
// Each spawned actor gets an unbounded FIFO mailbox and one goroutine that
// drains it. Receive is never called concurrently for the same actor, so
// actor state needs no locks. Messages from one sender to one actor are
// observed in send order.
//
//	sys := actor.NewSystem(ctx, actor.DefaultConfig())
//	ref, err := sys.Spawn("counter", &Counter{})
//	ref.Tell(Increment{}, nil)
//
// # Replies
//
// Every Envelope carries the sender's Ref. Actors reply by telling the
// sender; routers forward with the original sender so replies reach the
// original caller. Code outside the system waits for a reply through a
// Promise:
//
//	reply, err := actor.Ask(ctx, ref, Query{})
//
// # Lifecycle
//
// An actor stops when it calls Context.Stop, when its Receive panics, or
// when the system shuts down. Children spawned through Context.Spawn are
// watched by their parent: the parent receives Terminated together with
// any messages that were still queued in the child's mailbox. Telling a
// stopped actor fails and the message is counted as a dead letter.
//
// # Timers
//
// Context.StartTimer schedules a keyed one-shot message to self; starting a
// key again cancels the previous timer first, and a timer that fired but
// was cancelled before delivery is discarded. Context.SetReceiveTimeout
// arms an idle timer that is re-armed after every message and delivers
// ReceiveTimeout when the actor has been idle for the window.
package actor
