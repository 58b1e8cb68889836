package dismiss

import (
	"context"
	"fmt"

	"github.com/oshokin/order-siren/internal/codec"
	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/service/common"
)

// Options describes the dismissal to publish.
type Options struct {
	// ConfigPath to the YAML settings file.
	ConfigPath string
	// OrderID targets a specific order; empty dismisses whatever alert is
	// active.
	OrderID string
}

// Run publishes one dismiss event and returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "order-siren-dismiss")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	payload, err := codec.EncodeDismiss(opts.OrderID)
	if err != nil {
		return fmt.Errorf("encode dismissal: %w", err)
	}

	publisher, err := common.NewPublisher(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = publisher.Close() //nolint:errcheck // Best effort on exit.
	}()

	publishCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := publisher.Publish(publishCtx, payload); err != nil {
		return fmt.Errorf("publish dismissal: %w", err)
	}

	if opts.OrderID != "" {
		logger.InfoKV(ctx, "Dismissal published", "order_id", opts.OrderID)
	} else {
		logger.Info(ctx, "Wildcard dismissal published")
	}

	return nil
}
