// Package fetch retrieves document content over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/tailored-agentic-units/wordcount/document"
)

// drainLimit bounds how much of an unread body is discarded before close
// so the connection can return to the pool.
const drainLimit = 64 << 10

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client fetches http and https documents. It is safe for concurrent use by
// any number of scanners; the optional rate limiter is shared by all of them.
type Client struct {
	http         *http.Client
	userAgent    string
	maxBodyBytes int64
	limiter      *rate.Limiter
}

func New(cfg *Config, opts ...Option) *Client {
	c := &Client{
		http:         &http.Client{},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = defaultMaxBodyBytes
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the document. Cancelling ctx aborts the request at any
// stage, including while waiting on the rate limiter, and the response body
// is always closed.
func (c *Client) Fetch(ctx context.Context, id document.Identity) (document.Content, error) {
	u := id.URL()
	if u.Scheme != "http" && u.Scheme != "https" {
		return document.Content{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return document.Content{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id.String(), nil)
	if err != nil {
		return document.Content{}, fmt.Errorf("failed to build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html, application/xhtml+xml, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.http.Do(req)
	if err != nil {
		return document.Content{}, fmt.Errorf("GET %s: %w", id, err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return document.Content{}, &StatusError{URL: id.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return document.Content{}, fmt.Errorf("failed to read body of %s: %w", id, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return document.Content{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, id, c.maxBodyBytes)
	}

	return document.Content{
		Identity:    id,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
