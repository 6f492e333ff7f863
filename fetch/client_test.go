package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/fetch"
)

func newClient(mutate func(*fetch.Config)) *fetch.Client {
	cfg := fetch.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return fetch.New(&cfg)
}

func TestClient_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>hello world</p>"))
	}))
	defer srv.Close()

	id := document.MustParseIdentity(srv.URL + "/page")
	content, err := newClient(nil).Fetch(context.Background(), id)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if string(content.Body) != "<p>hello world</p>" {
		t.Errorf("Body = %q", content.Body)
	}
	if content.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", content.ContentType)
	}
	if content.Identity != id {
		t.Errorf("Identity = %v, want %v", content.Identity, id)
	}
	if gotUA != "wordcount/1.0" {
		t.Errorf("User-Agent = %q, want wordcount/1.0", gotUA)
	}
}

func TestClient_Fetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/large":
			w.Write([]byte(strings.Repeat("x", 128)))
		}
	}))
	defer srv.Close()

	client := newClient(func(c *fetch.Config) { c.MaxBodyBytes = 64 })

	t.Run("status error", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), document.MustParseIdentity(srv.URL+"/missing"))
		var statusErr *fetch.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Fetch() error = %v, want StatusError", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
		}
	})

	t.Run("body too large", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), document.MustParseIdentity(srv.URL+"/large"))
		if !errors.Is(err, fetch.ErrBodyTooLarge) {
			t.Errorf("Fetch() error = %v, want ErrBodyTooLarge", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), document.MustParseIdentity("ftp://example.com/file"))
		if !errors.Is(err, fetch.ErrUnsupportedScheme) {
			t.Errorf("Fetch() error = %v, want ErrUnsupportedScheme", err)
		}
	})
}

func TestClient_Fetch_DeadlineCancels(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newClient(nil).Fetch(ctx, document.MustParseIdentity(srv.URL))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Fetch() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch() took %v after deadline", elapsed)
	}
}

func TestClient_Fetch_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newClient(func(c *fetch.Config) {
		c.RateLimit = 0.001
		c.RateBurst = 1
	})
	id := document.MustParseIdentity(srv.URL)

	if _, err := client.Fetch(context.Background(), id); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Fetch(ctx, id); err == nil {
		t.Error("second Fetch() succeeded, want rate limit error")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := fetch.DefaultConfig()
	cfg.Merge(&fetch.Config{RateLimit: 5, UserAgent: "bot"})

	if cfg.RateLimit != 5 || cfg.UserAgent != "bot" {
		t.Errorf("Merge() = %+v", cfg)
	}
	if cfg.MaxBodyBytes != 10<<20 || cfg.RateBurst != 1 {
		t.Errorf("Merge() overwrote defaults: %+v", cfg)
	}
}
