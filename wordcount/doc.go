// Package wordcount implements a fan-out/fan-in word counting engine on top
// of package actor.
//
// Four kinds of actor cooperate:
//
//   - Scanner: a stateless fetch worker. Scanners sit behind a round-robin
//     router; each one fetches a document, tokenizes it and streams the
//     tokens back in bounded WordsFound batches followed by
//     EndOfDocumentReached, or reports DocumentScanFailed.
//   - Aggregator: one per document identity. Counts tokens and answers
//     FetchCounts once the document is fully tabulated.
//   - Registry: creates aggregators on first use, routes every
//     DocumentMessage to the aggregator for its identity and recreates
//     aggregators that were evicted for idleness.
//   - Coordinator: the per-job saga. It fans ScanDocument out to the
//     scanners and FetchCounts to the registry, relays scanner output to
//     the registry, merges the published counts and answers subscribers
//     when every document is settled or the job timeout fires.
//
// Control flow for one job:
//
//	coordinator --ScanDocument--> scanners --WordsFound/End--> coordinator
//	coordinator --FetchCounts/WordsFound/End--> registry --> aggregator
//	aggregator --CountsTabulatedForDocument--> coordinator --JobResult--> subscribers
//
// No actor shares mutable data with another. Token batches and published
// frequency maps are treated as immutable once sent.
package wordcount
