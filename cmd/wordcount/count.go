package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/wordcount/engine"
	"github.com/tailored-agentic-units/wordcount/rpc"
)

const shutdownTimeout = 5 * time.Second

type countOptions struct {
	top     int
	json    bool
	server  string
	timeout time.Duration
}

func newCountCmd(root *rootOptions) *cobra.Command {
	opts := &countOptions{}

	cmd := &cobra.Command{
		Use:   "count <url>...",
		Short: "Run one job over the given URLs and print the merged counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				msg *structpb.Struct
				err error
			)
			if opts.server != "" {
				msg, err = countRemote(ctx, opts, args)
			} else {
				msg, err = countLocal(ctx, cmd, root, opts, args)
			}
			if err != nil {
				return err
			}

			if opts.json {
				return printJSON(cmd.OutOrStdout(), msg)
			}
			return printText(cmd.OutOrStdout(), msg, opts.top)
		},
	}

	cmd.Flags().IntVarP(&opts.top, "top", "n", 10, "Number of most frequent words to print; 0 prints all")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the full result as JSON")
	cmd.Flags().StringVar(&opts.server, "server", "", "Send the job to a running wordcount server instead of counting locally")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Client-side deadline for a remote call; 0 waits for the job")

	return cmd
}

func countLocal(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *countOptions, urls []string) (*structpb.Struct, error) {
	cfg, err := root.engineConfig()
	if err != nil {
		return nil, commandError("failed to load config", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), root.verbose)
	e, err := engine.New(ctx, cfg, engine.WithLogger(logger))
	if err != nil {
		return nil, commandError("failed to create engine", err)
	}
	defer func() {
		if err := e.Shutdown(shutdownTimeout); err != nil {
			logger.Warn("engine shutdown incomplete", "error", err)
		}
	}()

	result, err := e.Count(ctx, urls...)
	if err != nil {
		return nil, commandError("count failed", err)
	}
	return rpc.EncodeResult(result, opts.top)
}

func countRemote(ctx context.Context, opts *countOptions, urls []string) (*structpb.Struct, error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	client := rpc.NewClient(http.DefaultClient, opts.server)
	msg, err := client.Count(ctx, urls, opts.top)
	if err != nil {
		return nil, commandError("remote count failed", err)
	}
	return msg, nil
}

func printJSON(w io.Writer, msg *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return commandError("failed to encode result", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printText(w io.Writer, msg *structpb.Struct, top int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DOCUMENT\tSTATUS\tERROR")
	for _, doc := range rpc.DecodeStatuses(msg) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", doc.URL, doc.Status, doc.Error)
	}
	fmt.Fprintln(tw)

	counts := rpc.DecodeCounts(msg)
	fmt.Fprintf(tw, "WORD\tCOUNT\t\n")
	for _, wc := range counts.Top(top) {
		fmt.Fprintf(tw, "%s\t%d\t\n", wc.Word, wc.Count)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "total words: %d, distinct: %d\n", counts.Total(), len(counts))

	return tw.Flush()
}
