package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/service/sentinel"
	"github.com/oshokin/order-siren/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// consumerURL overrides the consumer webhook base URL.
	consumerURL string

	// rootCmd represents the base command for running the alert daemon.
	rootCmd = &cobra.Command{
		Use:   "order-sirend",
		Short: "Run the incoming-order alert daemon.",
		Long: `Starts the order alert daemon that turns incoming order events into
a full-screen alert with a repeating sound and a slide control to accept
or reject the order.

Order events arrive through the configured delivery channel (redis pub/sub
or kafka). Captured decisions are relayed to the business-layer webhook,
or parked in the pending slot while the webhook is unreachable.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return sentinel.Run(ctx, &sentinel.Options{
				ConfigPath:  configPath,
				ConsumerURL: consumerURL,
			})
		},
	}
)

// Execute runs the order-sirend CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&consumerURL, "consumer-url", "u", "", "override the consumer webhook base URL")
}
