package wordcount

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/observability"
)

// Scanner is a fetch worker. It handles one ScanDocument at a time and keeps
// no state between requests, so any scanner can serve any document.
type Scanner struct {
	fetcher      Fetcher
	tokenizer    Tokenizer
	batchSize    int
	fetchTimeout time.Duration
}

func NewScanner(fetcher Fetcher, tokenizer Tokenizer, cfg *Config) *Scanner {
	return &Scanner{
		fetcher:      fetcher,
		tokenizer:    tokenizer,
		batchSize:    max(cfg.BatchSize, 1),
		fetchTimeout: cfg.FetchTimeout.Std(),
	}
}

func (s *Scanner) Receive(ctx *actor.Context, env actor.Envelope) {
	switch msg := env.Message.(type) {
	case ScanDocument:
		s.scan(ctx, msg.Document, env.Sender)
	default:
		ctx.Unhandled(env)
	}
}

func (s *Scanner) scan(ctx *actor.Context, id document.Identity, replyTo actor.Ref) {
	if replyTo == nil {
		ctx.Emit(EventScanFailed, observability.LevelWarning, map[string]any{
			"document": id.String(),
			"error":    "scan requested without a reply target",
		})
		return
	}

	ctx.Emit(EventScanStart, observability.LevelVerbose, map[string]any{
		"document": id.String(),
	})

	tokens, err := s.tokens(ctx.Context(), id)
	if err != nil {
		ctx.Emit(EventScanFailed, observability.LevelWarning, map[string]any{
			"document": id.String(),
			"error":    err.Error(),
		})
		replyTo.Tell(DocumentScanFailed{Document: id, Reason: err}, ctx.Self())
		return
	}

	batches := 0
	for batch := range slices.Chunk(tokens, s.batchSize) {
		replyTo.Tell(WordsFound{Document: id, Words: batch}, ctx.Self())
		batches++
	}
	replyTo.Tell(EndOfDocumentReached{Document: id}, ctx.Self())

	ctx.Emit(EventScanComplete, observability.LevelVerbose, map[string]any{
		"document": id.String(),
		"words":    len(tokens),
		"batches":  batches,
	})
}

// tokens bounds the fetch by the scanner's own deadline and by parent,
// whichever ends first.
func (s *Scanner) tokens(parent context.Context, id document.Identity) ([]string, error) {
	ctx := parent
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.fetchTimeout)
		defer cancel()
	}

	content, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	tokens, err := s.tokenizer.Tokenize(content)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return tokens, nil
}

// Spawner starts actors. Both *actor.System and *actor.Context implement it.
type Spawner interface {
	Spawn(name string, a actor.Actor, opts ...actor.SpawnOption) (actor.Ref, error)
}

// SpawnScannerPool starts size scanners named "<name>-<i>" and returns a
// round-robin router over them.
func SpawnScannerPool(spawner Spawner, name string, size int, newScanner func() actor.Actor) (*actor.RoundRobin, error) {
	if size < 1 {
		size = 1
	}

	routees := make([]actor.Ref, 0, size)
	for i := range size {
		ref, err := spawner.Spawn(fmt.Sprintf("%s-%d", name, i), newScanner())
		if err != nil {
			return nil, fmt.Errorf("failed to spawn scanner %d: %w", i, err)
		}
		routees = append(routees, ref)
	}

	return actor.NewRoundRobin(name, routees...), nil
}
