package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialhub/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddress = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}
			defer cleanup()

			return serve(ctx, c)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDRESS)")
	return cmd
}

// serve runs the API until ctx is cancelled, then shuts down gracefully
func serve(ctx context.Context, c *di.Container) error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	c.Start(workerCtx)

	srv := &http.Server{
		Addr:         c.Config.ServerAddress,
		Handler:      c.Router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", c.Config.Environment),
			zap.String("storage", c.Config.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	c.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := c.Shutdown(shutdownCtx); err != nil {
		c.Logger.Error("Worker shutdown error", zap.Error(err))
	}
	return serveErr
}
