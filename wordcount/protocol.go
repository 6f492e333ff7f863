package wordcount

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/wordcount/document"
)

// Fetcher retrieves a document. Implementations must honour ctx
// cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, id document.Identity) (document.Content, error)
}

// Tokenizer turns fetched content into whitespace-delimited tokens.
type Tokenizer interface {
	Tokenize(content document.Content) ([]string, error)
}

// DocumentMessage is implemented by every message scoped to one document.
// The registry routes on it without inspecting the payload.
type DocumentMessage interface {
	DocumentIdentity() document.Identity
}

// ScanDocument asks a scanner to fetch and tokenize a document. Results go
// to the sender.
type ScanDocument struct {
	Document document.Identity
}

// WordsFound carries one batch of tokens, in document order.
type WordsFound struct {
	Document document.Identity
	Words    []string
}

// EndOfDocumentReached follows the last WordsFound batch of a document.
type EndOfDocumentReached struct {
	Document document.Identity
}

// DocumentScanFailed is the only message a scanner sends for a document it
// could not fetch or tokenize.
type DocumentScanFailed struct {
	Document document.Identity
	Reason   error
}

// FetchCounts asks an aggregator for the finished counts of its document.
// The reply is CountsTabulatedForDocument, sent once tabulation is final.
type FetchCounts struct {
	Document document.Identity
}

// CountsTabulatedForDocument carries a published, read-only snapshot.
type CountsTabulatedForDocument struct {
	Document document.Identity
	Counts   document.Frequencies
}

func (m ScanDocument) DocumentIdentity() document.Identity               { return m.Document }
func (m WordsFound) DocumentIdentity() document.Identity                 { return m.Document }
func (m EndOfDocumentReached) DocumentIdentity() document.Identity       { return m.Document }
func (m DocumentScanFailed) DocumentIdentity() document.Identity         { return m.Document }
func (m FetchCounts) DocumentIdentity() document.Identity                { return m.Document }
func (m CountsTabulatedForDocument) DocumentIdentity() document.Identity { return m.Document }

// StartJob submits the batch a coordinator runs. Duplicate identities are
// counted once.
type StartJob struct {
	Documents []document.Identity
}

// SubscribeResults registers the sender for the JobResult. It may arrive
// before StartJob.
type SubscribeResults struct{}

// JobResult is the merged outcome of one job. Counts only includes
// documents that completed; Statuses and Errors explain the rest.
type JobResult struct {
	Documents []document.Identity
	Counts    document.Frequencies
	Statuses  map[document.Identity]Status
	Errors    map[document.Identity]string
	Duration  time.Duration
}

type jobTimeout struct{}
