// Package actortest provides test doubles for code built on package actor.
package actortest

import (
	"context"
	"testing"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
)

// DefaultTimeout bounds Expect calls made through the helpers below.
const DefaultTimeout = 2 * time.Second

// Probe is a Ref that records every message told to it.
type Probe struct {
	t       testing.TB
	name    string
	mailbox *actor.Mailbox[actor.Envelope]
}

func NewProbe(t testing.TB, name string) *Probe {
	t.Helper()
	return &Probe{
		t:       t,
		name:    name,
		mailbox: actor.NewMailbox[actor.Envelope](),
	}
}

func (p *Probe) Name() string {
	return p.name
}

func (p *Probe) Tell(message any, sender actor.Ref) bool {
	return p.mailbox.Send(actor.NewEnvelope(message, sender))
}

// Expect returns the next envelope, failing the test if none arrives within
// timeout.
func (p *Probe) Expect(timeout time.Duration) actor.Envelope {
	p.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	envelope, err := p.mailbox.Receive(ctx)
	if err != nil {
		p.t.Fatalf("probe %s: no message within %v", p.name, timeout)
	}
	return envelope
}

// ExpectNone fails the test if a message arrives within d.
func (p *Probe) ExpectNone(d time.Duration) {
	p.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	if envelope, err := p.mailbox.Receive(ctx); err == nil {
		p.t.Fatalf("probe %s: unexpected message %T", p.name, envelope.Message)
	}
}

// Len reports how many messages are waiting.
func (p *Probe) Len() int {
	return p.mailbox.Len()
}

// ExpectMessage receives the next message and asserts its type.
func ExpectMessage[T any](p *Probe) T {
	p.t.Helper()

	envelope := p.Expect(DefaultTimeout)
	message, ok := envelope.Message.(T)
	if !ok {
		var want T
		p.t.Fatalf("probe %s: got %T, want %T", p.name, envelope.Message, want)
	}
	return message
}
