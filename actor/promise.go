package actor

import (
	"context"
	"fmt"
)

// Promise is a one-shot reply target for callers outside the system. The
// first message told to it is kept; later ones are rejected.
type Promise struct {
	name    string
	replies chan Envelope
}

func NewPromise() *Promise {
	return &Promise{
		name:    "promise-" + generateID(),
		replies: make(chan Envelope, 1),
	}
}

func (p *Promise) Name() string {
	return p.name
}

func (p *Promise) Tell(message any, sender Ref) bool {
	select {
	case p.replies <- NewEnvelope(message, sender):
		return true
	default:
		return false
	}
}

// Await blocks for the reply or until ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case envelope := <-p.replies:
		return envelope.Message, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting %s: %w", p.name, ctx.Err())
	}
}

// Ask tells message to target with a fresh promise as sender and waits for
// the reply.
func Ask(ctx context.Context, target Ref, message any) (any, error) {
	p := NewPromise()
	if !target.Tell(message, p) {
		return nil, fmt.Errorf("%w: %s", ErrDeadLetter, target.Name())
	}
	return p.Await(ctx)
}
