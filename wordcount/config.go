package wordcount

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/tailored-agentic-units/wordcount/config"
)

// Config holds engine tuning. Zero values in a loaded config leave the
// defaults in place.
//
// Worker pool sizing:
//   - Workers > 0: exact scanner count
//   - Workers = 0: min(NumCPU*2, WorkerCap), at least 1
type Config struct {
	Workers       int             `json:"workers,omitempty"`
	WorkerCap     int             `json:"worker_cap,omitempty"`
	BatchSize     int             `json:"batch_size,omitempty"`
	FetchTimeout  config.Duration `json:"fetch_timeout,omitempty"`
	IdleTimeout   config.Duration `json:"idle_timeout,omitempty"`
	JobTimeout    config.Duration `json:"job_timeout,omitempty"`
	StashCapacity int             `json:"stash_capacity,omitempty"`
}

// ErrInvalidConfig is wrapped by Validate failures.
var ErrInvalidConfig = errors.New("invalid wordcount config")

func DefaultConfig() Config {
	return Config{
		Workers:       0,
		WorkerCap:     16,
		BatchSize:     20,
		FetchTimeout:  config.Duration(5 * time.Second),
		IdleTimeout:   config.Duration(2 * time.Minute),
		JobTimeout:    config.Duration(30 * time.Second),
		StashCapacity: 1024,
	}
}

func (c *Config) Merge(source *Config) {
	if source.Workers > 0 {
		c.Workers = source.Workers
	}

	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}

	if source.BatchSize > 0 {
		c.BatchSize = source.BatchSize
	}

	if source.FetchTimeout > 0 {
		c.FetchTimeout = source.FetchTimeout
	}

	if source.IdleTimeout > 0 {
		c.IdleTimeout = source.IdleTimeout
	}

	if source.JobTimeout > 0 {
		c.JobTimeout = source.JobTimeout
	}

	if source.StashCapacity > 0 {
		c.StashCapacity = source.StashCapacity
	}
}

// Validate rejects an idle window that could evict an aggregator while its
// document is still being fetched. A zero value disables the timer it names.
func (c *Config) Validate() error {
	if c.IdleTimeout > 0 && c.FetchTimeout > 0 && c.IdleTimeout <= c.FetchTimeout {
		return fmt.Errorf("%w: idle_timeout %v must exceed fetch_timeout %v",
			ErrInvalidConfig, c.IdleTimeout.Std(), c.FetchTimeout.Std())
	}
	return nil
}

// WorkerCount resolves the scanner pool size.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	workers := runtime.NumCPU() * 2
	if c.WorkerCap > 0 {
		workers = min(workers, c.WorkerCap)
	}

	return max(workers, 1)
}
