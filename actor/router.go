package actor

import "sync/atomic"

// RoundRobin spreads messages over a fixed set of routees in turn. It is a
// plain Ref rather than an actor: routing needs no shared state beyond an
// atomic counter, so any number of senders can tell it concurrently.
type RoundRobin struct {
	name    string
	routees []Ref
	next    atomic.Uint64
}

func NewRoundRobin(name string, routees ...Ref) *RoundRobin {
	return &RoundRobin{
		name:    name,
		routees: routees,
	}
}

func (r *RoundRobin) Name() string {
	return r.name
}

// Tell forwards to the next routee, preserving sender.
func (r *RoundRobin) Tell(message any, sender Ref) bool {
	if len(r.routees) == 0 {
		return false
	}
	i := (r.next.Add(1) - 1) % uint64(len(r.routees))
	return r.routees[i].Tell(message, sender)
}

func (r *RoundRobin) Routees() []Ref {
	out := make([]Ref, len(r.routees))
	copy(out, r.routees)
	return out
}
