package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/sluice/internal/cli"
	sluicehttp "github.com/aretw0/sluice/pkg/adapters/http"
	"github.com/aretw0/sluice/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Start the editor HTTP server",
	Long: `Loads the graph and exposes it as a JSON API with an SSE stream of display updates.
Prometheus metrics, a Redis display mirror and tracing are enabled from the config file or flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis-addr") {
			cfg.Redis.Addr, _ = cmd.Flags().GetString("redis-addr")
		}
		if cmd.Flags().Changed("trace") {
			cfg.Trace.Enabled, _ = cmd.Flags().GetBool("trace")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := cli.NewStack(sigCtx, args[0], cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := stack.Close(context.Background()); err != nil {
				logger.Warn("Shutdown cleanup failed", "error", err)
			}
		}()

		handlerOpts := []sluicehttp.Option{
			sluicehttp.WithStreams(stack.Streams),
			sluicehttp.WithLogger(logger),
		}
		if cfg.Metrics.Enabled {
			handlerOpts = append(handlerOpts, sluicehttp.WithHandler(cfg.Metrics.Path, observability.Handler(stack.Registry)))
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           sluicehttp.NewHandler(stack.Editor, handlerOpts...),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Sluice Server", "addr", srv.Addr, "graph", stack.Editor.Name, "file", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-sigCtx.Done():
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return err
				}
			}
			logger.Info("Sluice Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-addr", "", "Mirror display values to this Redis server")
	serveCmd.Flags().Bool("trace", false, "Export pass spans to stderr")
}
