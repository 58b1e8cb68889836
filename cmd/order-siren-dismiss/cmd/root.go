package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/service/dismiss"
	"github.com/oshokin/order-siren/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for dismissing the active alert.
	rootCmd = &cobra.Command{
		Use:   "order-siren-dismiss [order-id]",
		Short: "Dismiss the active order alert.",
		Long: `Publishes a dismiss event into the daemon's delivery channel.

Without an order id the active alert is dismissed regardless of which
order it shows. With an order id the dismissal only applies when that
order is the active one. Dismiss always wins: it cancels the alert even
when a decision slide is in progress.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var orderID string
			if len(args) > 0 {
				orderID = args[0]
			}

			return dismiss.Run(ctx, &dismiss.Options{
				ConfigPath: configPath,
				OrderID:    orderID,
			})
		},
	}
)

// Execute runs the order-siren-dismiss CLI and exits with non-zero status on error.
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
