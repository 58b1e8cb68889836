package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/service/send"
	"github.com/oshokin/order-siren/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// opts collects the announcement fields from flags.
	opts send.Options

	// rootCmd represents the base command for publishing an order event.
	rootCmd = &cobra.Command{
		Use:   "order-siren-send <order-id>",
		Short: "Publish an incoming order announcement.",
		Long: `Publishes an incoming order event into the daemon's delivery channel.

The daemon reacts by ringing and presenting the order for a decision.
Repeated announcements for the same order refresh the alert content; an
announcement for a different order replaces the active alert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts.ConfigPath = configPath
			opts.OrderID = args[0]

			return send.Run(ctx, &opts)
		},
	}
)

// Execute runs the order-siren-send CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVar(&opts.CustomerName, "name", "", "customer display name")
	rootCmd.Flags().StringVar(&opts.TableNo, "table", "", "table number")
	rootCmd.Flags().StringVar(&opts.Phone, "phone", "", "customer phone number")
	rootCmd.Flags().StringVar(&opts.Total, "total", "", "order total amount")
	rootCmd.Flags().StringVar(&opts.ItemsCount, "items-count", "", "number of line items")
	rootCmd.Flags().StringVar(&opts.ItemsJSON, "items", "", "line items as a JSON array")
}
