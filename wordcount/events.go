package wordcount

import "github.com/tailored-agentic-units/wordcount/observability"

const (
	EventScanStart    observability.EventType = "scan.start"
	EventScanComplete observability.EventType = "scan.complete"
	EventScanFailed   observability.EventType = "scan.failed"

	EventAggregatorMisrouted observability.EventType = "aggregator.misrouted"
	EventAggregatorDiscarded observability.EventType = "aggregator.discarded"
	EventAggregatorPublished observability.EventType = "aggregator.published"
	EventAggregatorIdle      observability.EventType = "aggregator.idle"

	EventRegistrySpawn   observability.EventType = "registry.spawn"
	EventRegistryRespawn observability.EventType = "registry.respawn"
	EventRegistryError   observability.EventType = "registry.error"

	EventJobStart         observability.EventType = "job.start"
	EventJobStash         observability.EventType = "job.stash"
	EventJobStashOverflow observability.EventType = "job.stash_overflow"
	EventJobDocument      observability.EventType = "job.document"
	EventJobTimeout       observability.EventType = "job.timeout"
	EventJobComplete      observability.EventType = "job.complete"
)
