package drain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/consumer"
	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/relay"
)

// Options controls the drain operation.
type Options struct {
	// ConfigPath to the YAML settings file.
	ConfigPath string
	// Output receives the pending decision JSON when no consumer takes it.
	// Defaults to stdout.
	Output io.Writer
}

// Run consumes the pending decision slot once. With a reachable consumer
// the decision is applied there; otherwise it is printed as JSON so the
// operator can act on it. An empty slot is not an error.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "order-siren-drain")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	pending, err := takePending(ctx, cfg)
	if err != nil {
		return err
	}

	if pending == nil {
		logger.Info(ctx, "No pending decision")

		return nil
	}

	webhook := consumer.NewWebhook(cfg.ConsumerURL, cfg.Timeout)
	if webhook.Attached() {
		webhook.ApplyDecision(ctx, pending.OrderID, pending.Decision)
		webhook.OpenDetail(ctx, pending.OrderID)

		return nil
	}

	// No consumer to take it; the slot is already consumed, so the decision
	// must reach the operator.
	encoded, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending decision: %w", err)
	}

	if _, err := fmt.Fprintln(output, string(encoded)); err != nil {
		return fmt.Errorf("write pending decision: %w", err)
	}

	return nil
}

// takePending consumes the slot from whichever store the settings select.
func takePending(ctx context.Context, cfg *config.Config) (*order.PendingDecision, error) {
	var store relay.PendingStore

	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})

		defer func() {
			_ = client.Close() //nolint:errcheck // Best effort on exit.
		}()

		store = relay.NewRedisStore(client)
	} else {
		store = relay.NewFileStore(cfg.PendingFile)
	}

	decisionRelay := relay.New(nil, store)

	taken, err := decisionRelay.DrainPending(ctx)
	if err != nil {
		return nil, err
	}

	return taken, nil
}
