package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/shopfront/internal/app"
	"github.com/five82/shopfront/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the shopfront command. Without a subcommand it runs
// the terminal storefront.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopfront",
		Short: "Browse the product catalog from the terminal",
		Long: `shopfront is a keyboard-driven storefront: product list with search,
filters and infinite scroll, product detail pages and a persistent cart.

By default the catalog API is served in-process from the embedded seed
catalog. Set embedded_api = false and api_url in the config to use a
running "shopfront serve" instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			_, err := logging.ParseLevel(opts.LogLevel)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: opts.ConfigPath,
				LogLevel:   opts.LogLevel,
			})
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/shopfront/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
