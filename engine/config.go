package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/wordcount/actor"
	"github.com/tailored-agentic-units/wordcount/fetch"
	"github.com/tailored-agentic-units/wordcount/wordcount"
)

const defaultObserver = "slog"

// Config holds initialization parameters for every engine subsystem. Each
// section delegates to that subsystem's own Config.
type Config struct {
	System    actor.Config     `json:"system"`
	WordCount wordcount.Config `json:"wordcount"`
	Fetch     fetch.Config     `json:"fetch"`
	Observer  string           `json:"observer,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		System:    actor.DefaultConfig(),
		WordCount: wordcount.DefaultConfig(),
		Fetch:     fetch.DefaultConfig(),
		Observer:  defaultObserver,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.System.Merge(&source.System)
	c.WordCount.Merge(&source.WordCount)
	c.Fetch.Merge(&source.Fetch)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
