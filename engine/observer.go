package engine

import "github.com/tailored-agentic-units/wordcount/observability"

// Engine event types emitted around each Count call.
const (
	EventCountStart    observability.EventType = "engine.count.start"
	EventCountComplete observability.EventType = "engine.count.complete"
	EventCountError    observability.EventType = "engine.count.error"
)
