package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/wordcount/engine"
	"github.com/tailored-agentic-units/wordcount/rpc"
)

type serveOptions struct {
	addr string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Count RPC over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := root.engineConfig()
			if err != nil {
				return commandError("failed to load config", err)
			}

			logger := newLogger(cmd.ErrOrStderr(), root.verbose)

			listener, err := net.Listen("tcp", opts.addr)
			if err != nil {
				return commandError("failed to listen", err)
			}

			return serve(ctx, listener, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")
	return cmd
}

// serve runs the RPC server on listener until ctx ends, then drains
// in-flight requests and stops the engine.
func serve(ctx context.Context, listener net.Listener, cfg *engine.Config, logger *slog.Logger) error {
	e, err := engine.New(context.WithoutCancel(ctx), cfg, engine.WithLogger(logger))
	if err != nil {
		listener.Close()
		return commandError("failed to create engine", err)
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.NewHandler(e, connect.WithInterceptors(rpc.LoggingInterceptor(logger))))

	protocols := new(http.Protocols)
	protocols.SetHTTP1(true)
	protocols.SetUnencryptedHTTP2(true)

	server := &http.Server{
		Handler:           mux,
		Protocols:         protocols,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(listener)
	}()

	logger.InfoContext(ctx, "serving", slog.String("addr", listener.Addr().String()))

	select {
	case err := <-errs:
		if shutdownErr := e.Shutdown(shutdownTimeout); shutdownErr != nil {
			logger.Warn("engine shutdown incomplete", "error", shutdownErr)
		}
		return commandError("server failed", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErrs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := e.Shutdown(shutdownTimeout); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		shutdownErrs = append(shutdownErrs, err)
	}
	return errors.Join(shutdownErrs...)
}
