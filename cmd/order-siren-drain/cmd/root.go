package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/service/drain"
	"github.com/oshokin/order-siren/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for draining the pending decision.
	rootCmd = &cobra.Command{
		Use:   "order-siren-drain",
		Short: "Consume the pending decision slot.",
		Long: `Takes the decision parked while the consumer webhook was unreachable.

When the webhook is reachable the decision is applied there directly.
Otherwise the decision is printed as JSON on stdout for manual handling.
The slot is consume-once: a second drain finds it empty.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return drain.Run(ctx, &drain.Options{ConfigPath: configPath})
		},
	}
)

// Execute runs the order-siren-drain CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
