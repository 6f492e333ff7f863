package observability_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/wordcount/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	e := observability.NewEvent("job.start", observability.LevelInfo, "job-1", map[string]any{"documents": 2})

	if e.Timestamp.IsZero() {
		t.Error("NewEvent() left Timestamp zero")
	}
	if e.Source != "job-1" {
		t.Errorf("Source = %q, want %q", e.Source, "job-1")
	}
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "warning at info handler", level: observability.LevelWarning, minLevel: slog.LevelInfo, expectLog: true},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			obs := observability.NewSlogObserver(logger)
			obs.OnEvent(context.Background(), observability.NewEvent("test.event", tt.level, "test", nil))

			if got := buf.Len() > 0; got != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", got, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.NewEvent(
		"aggregator.misrouted",
		observability.LevelWarning,
		"aggregator-https%3A%2F%2Fexample.com",
		map[string]any{"words": 42},
	))

	output := buf.String()
	for _, want := range []string{"aggregator.misrouted", "source=aggregator-https%3A%2F%2Fexample.com", "words=42", "level=WARN"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
}

func TestMultiObserver_NilFiltering(t *testing.T) {
	rec := &observability.Recorder{}
	multi := observability.NewMultiObserver(nil, rec, nil, rec)

	multi.OnEvent(context.Background(), observability.NewEvent("test.event", observability.LevelInfo, "test", nil))

	if got := rec.Count("test.event"); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := &observability.Recorder{}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.OnEvent(context.Background(), observability.NewEvent("scan.start", observability.LevelVerbose, "scanner-0", nil))
		}()
	}
	wg.Wait()

	if got := len(rec.Events()); got != 50 {
		t.Errorf("len(Events()) = %d, want 50", got)
	}
	if got := rec.Count("scan.complete"); got != 0 {
		t.Errorf("Count(scan.complete) = %d, want 0", got)
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		key      string
		wantType string
		wantErr  bool
	}{
		{key: "noop", wantType: "observability.NoOpObserver"},
		{key: "slog", wantType: "*observability.SlogObserver"},
		{key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := fmt.Sprintf("%T", obs); got != tt.wantType {
				t.Errorf("GetObserver(%q) = %s, want %s", tt.key, got, tt.wantType)
			}
		})
	}
}

func TestRegistry_SlogUsesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	obs, err := observability.GetObserver("slog", logger)
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}

	obs.OnEvent(context.Background(), observability.NewEvent("job.start", observability.LevelInfo, "job", nil))

	if !strings.Contains(buf.String(), "job.start") {
		t.Errorf("log output = %q, want it to contain job.start", buf.String())
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	rec := &observability.Recorder{}
	observability.RegisterObserver("test-recorder", func(*slog.Logger) observability.Observer {
		return rec
	})

	obs, err := observability.GetObserver("test-recorder", nil)
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}

	obs.OnEvent(context.Background(), observability.NewEvent("test.event", observability.LevelInfo, "test", nil))

	if got := rec.Count("test.event"); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if !slices.Contains(observability.Observers(), "test-recorder") {
		t.Errorf("Observers() = %v, missing test-recorder", observability.Observers())
	}
}
