package wordcount_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/actor/actortest"
	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/observability"
	"github.com/tailored-agentic-units/wordcount/wordcount"
)

func createTestSystem(t *testing.T, opts ...actor.Option) (*actor.System, *observability.Recorder) {
	t.Helper()

	recorder := &observability.Recorder{}
	opts = append([]actor.Option{actor.WithObserver(recorder)}, opts...)

	cfg := actor.DefaultConfig()
	cfg.Name = "wordcount-test"
	sys := actor.NewSystem(context.Background(), cfg, opts...)
	t.Cleanup(func() {
		if err := sys.Shutdown(5 * time.Second); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return sys, recorder
}

// testConfig disables idle eviction and the job timeout so tests opt in to
// the timers they exercise.
func testConfig() wordcount.Config {
	return wordcount.Config{
		Workers:       2,
		BatchSize:     20,
		StashCapacity: 16,
	}
}

// stubFetcher serves bodies from memory. Documents listed in block wait
// for ctx to end. The maps are read-only once a test starts.
type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
	block  map[string]bool
}

func (f *stubFetcher) Fetch(ctx context.Context, id document.Identity) (document.Content, error) {
	key := id.String()
	if f.block[key] {
		<-ctx.Done()
		return document.Content{}, ctx.Err()
	}
	if err, ok := f.errs[key]; ok {
		return document.Content{}, err
	}
	return document.Content{
		Identity:    id,
		ContentType: "text/plain",
		Body:        []byte(f.bodies[key]),
	}, nil
}

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(content document.Content) ([]string, error) {
	return strings.Fields(string(content.Body)), nil
}

func spawnJob(t *testing.T, sys *actor.System, fetcher wordcount.Fetcher, cfg wordcount.Config) actor.Ref {
	t.Helper()

	pool, err := wordcount.SpawnScannerPool(sys, "scanner", cfg.WorkerCount(), func() actor.Actor {
		return wordcount.NewScanner(fetcher, fieldsTokenizer{}, &cfg)
	})
	if err != nil {
		t.Fatalf("SpawnScannerPool() error = %v", err)
	}

	registry, err := sys.Spawn("registry", wordcount.NewRegistry(&cfg, nil))
	if err != nil {
		t.Fatalf("Spawn(registry) error = %v", err)
	}

	job, err := sys.Spawn("job", wordcount.NewCoordinator(pool, registry, &cfg))
	if err != nil {
		t.Fatalf("Spawn(job) error = %v", err)
	}
	return job
}

func awaitDone(t *testing.T, ref actor.Ref) {
	t.Helper()

	select {
	case <-actor.Done(ref):
	case <-time.After(actortest.DefaultTimeout):
		t.Fatalf("%s did not stop", ref.Name())
	}
}

// advanceUntilDone keeps moving the virtual clock until ref stops. The
// actor re-arms its idle timer after every message, so a single Advance
// can race with the re-arm and fire a timer that is already stale.
func advanceUntilDone(t *testing.T, clock *actortest.ManualScheduler, ref actor.Ref, step time.Duration) {
	t.Helper()

	deadline := time.After(actortest.DefaultTimeout)
	for {
		clock.Advance(step)
		select {
		case <-actor.Done(ref):
			return
		case <-deadline:
			t.Fatalf("%s did not stop", ref.Name())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(actortest.DefaultTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func eventsOf(recorder *observability.Recorder, eventType observability.EventType) []observability.Event {
	var out []observability.Event
	for _, e := range recorder.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
