package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tailored-agentic-units/wordcount/config"
	"github.com/tailored-agentic-units/wordcount/engine"
	"github.com/tailored-agentic-units/wordcount/observability"
	"github.com/tailored-agentic-units/wordcount/wordcount"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile   string
	verbose      bool
	workers      int
	batchSize    int
	fetchTimeout time.Duration
	jobTimeout   time.Duration
	idleTimeout  time.Duration
	observer     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "wordcount",
		Short:        "Count words across web documents concurrently",
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to engine config JSON file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging to stderr")
	flags.IntVar(&opts.workers, "workers", 0, "Scanner pool size; 0 sizes from CPU count (overrides config)")
	flags.IntVar(&opts.batchSize, "batch-size", 0, "Maximum tokens per batch (overrides config)")
	flags.DurationVar(&opts.fetchTimeout, "fetch-timeout", 0, "Per-document fetch deadline (overrides config)")
	flags.DurationVar(&opts.jobTimeout, "job-timeout", 0, "Deadline for a whole job (overrides config)")
	flags.DurationVar(&opts.idleTimeout, "idle-timeout", 0, "Aggregator idle eviction window (overrides config)")
	flags.StringVar(&opts.observer, "observer", "", fmt.Sprintf("Event observer, one of %v (overrides config)", observability.Observers()))

	cmd.AddCommand(newCountCmd(opts), newServeCmd(opts))
	return cmd
}

// engineConfig loads the config file, if any, and applies flag overrides.
func (o *rootOptions) engineConfig() (*engine.Config, error) {
	cfg := engine.DefaultConfig()
	if o.configFile != "" {
		loaded, err := engine.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.Merge(&engine.Config{
		WordCount: wordcountOverrides(o),
		Observer:  o.observer,
	})
	return &cfg, nil
}

func wordcountOverrides(o *rootOptions) wordcount.Config {
	return wordcount.Config{
		Workers:      o.workers,
		BatchSize:    o.batchSize,
		FetchTimeout: config.Duration(o.fetchTimeout),
		JobTimeout:   config.Duration(o.jobTimeout),
		IdleTimeout:  config.Duration(o.idleTimeout),
	}
}

// newLogger writes human-readable text to a terminal and JSON otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

func commandError(action string, err error) error {
	return fmt.Errorf("%s: %w", action, err)
}
