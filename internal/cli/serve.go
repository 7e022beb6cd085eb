package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/shopfront/internal/config"
	"github.com/five82/shopfront/internal/logging"
	"github.com/five82/shopfront/internal/mockapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Bind  string
	Delay time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock catalog API",
		Long: `Serve the embedded seed catalog over HTTP.

Endpoints:
  GET /api/products?page&limit&search&category1&category2&sort
  GET /api/products/{id}
  GET /api/categories

Example:
  shopfront serve --bind 127.0.0.1:7490 --delay 300ms`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bind, "bind", "", "listen address (default mock_bind from config)")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "artificial latency added to every response")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{Level: level, Output: "stderr"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := mockapi.New(mockapi.Options{Delay: opts.Delay, Logger: logger})
	if err != nil {
		return fmt.Errorf("init mock api: %w", err)
	}
	bind := opts.Bind
	if bind == "" {
		bind = cfg.MockBind
	}
	return srv.ListenAndServe(cmd.Context(), bind)
}
