package actor

import "github.com/tailored-agentic-units/wordcount/observability"

const (
	EventUnhandled  observability.EventType = "actor.unhandled"
	EventDeadLetter observability.EventType = "actor.dead_letter"
)
