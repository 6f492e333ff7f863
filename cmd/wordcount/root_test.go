package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/wordcount/engine"
)

func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := newRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func newDocumentServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/doc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>alpha beta alpha</p><script>gamma</script>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRootCmd_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for _, want := range []string{"count", "serve", "--config", "--job-timeout", "--verbose"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestCountCmd_RequiresURL(t *testing.T) {
	if _, _, err := executeCommand("count"); err == nil {
		t.Fatal("expected error without URLs")
	}
}

func TestCountCmd_Text(t *testing.T) {
	server := newDocumentServer(t)

	stdout, _, err := executeCommand("count", "--workers", "2", "--observer", "noop", server.URL+"/doc")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for _, want := range []string{"completed", "alpha", "total words: 3, distinct: 2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "gamma") {
		t.Errorf("output contains script text:\n%s", stdout)
	}
}

func TestCountCmd_JSON(t *testing.T) {
	server := newDocumentServer(t)

	stdout, _, err := executeCommand("count", "--json", "--observer", "noop", server.URL+"/doc")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var out struct {
		Counts map[string]float64 `json:"counts"`
		Total  float64            `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if out.Counts["alpha"] != 2 || out.Counts["beta"] != 1 {
		t.Errorf("got counts %v, want alpha:2 beta:1", out.Counts)
	}
	if out.Total != 3 {
		t.Errorf("got total %v, want 3", out.Total)
	}
}

func TestCountCmd_InvalidURL(t *testing.T) {
	_, _, err := executeCommand("count", "--observer", "noop", "relative/path")
	if err == nil {
		t.Fatal("expected error for relative URL")
	}
}

func TestCountCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"observer": "missing"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, _, err := executeCommand("count", "--config", configPath, "https://example.com")
	if err == nil || !strings.Contains(err.Error(), "unknown observer") {
		t.Fatalf("got error %v, want unknown observer", err)
	}
}

func TestRootOptions_EngineConfig(t *testing.T) {
	opts := &rootOptions{
		workers:    4,
		jobTimeout: time.Minute,
		observer:   "noop",
	}

	cfg, err := opts.engineConfig()
	if err != nil {
		t.Fatalf("engineConfig failed: %v", err)
	}

	if cfg.WordCount.Workers != 4 {
		t.Errorf("got Workers %d, want 4", cfg.WordCount.Workers)
	}
	if cfg.WordCount.JobTimeout.Std() != time.Minute {
		t.Errorf("got JobTimeout %v, want 1m", cfg.WordCount.JobTimeout)
	}
	if cfg.WordCount.BatchSize != 20 {
		t.Errorf("got BatchSize %d, want 20 (preserved default)", cfg.WordCount.BatchSize)
	}
	if cfg.Observer != "noop" {
		t.Errorf("got Observer %q, want %q", cfg.Observer, "noop")
	}
}

func TestServe_RemoteCount(t *testing.T) {
	docs := newDocumentServer(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	cfg := engine.DefaultConfig()
	cfg.Observer = "noop"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, listener, &cfg, logger)
	}()

	stdout, _, err := executeCommand("count", "--server", "http://"+listener.Addr().String(), "--timeout", "10s", docs.URL+"/doc")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(stdout, "alpha") {
		t.Errorf("output missing alpha:\n%s", stdout)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
