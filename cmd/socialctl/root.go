package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"socialhub/infrastructure/config"
	"socialhub/infrastructure/di"

	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand
type rootOptions struct {
	configFile string
	storage    string
	timeout    time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "socialctl",
		Short:         "socialhub server and operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")
	cmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "storage backend (memory|dynamodb)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for one-shot commands")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newRemoveIdentityCommand(opts))
	cmd.AddCommand(newCountsCommand(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		if err := os.Setenv("CONFIG_FILE", o.configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.storage != "" {
		cfg.Storage = o.storage
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// withContainer builds a started container, runs fn and drains it again
func (o *rootOptions) withContainer(ctx context.Context, fn func(ctx context.Context, c *di.Container) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	c, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	c.Start(ctx)
	runErr := fn(ctx, c)
	if err := c.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
