package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oshokin/order-siren/internal/logger"
)

// Redis carries bus topics over redis pub/sub channels, so events published
// by one process reach daemons running anywhere with the same redis.
type Redis struct {
	// client is the shared redis connection.
	client *redis.Client
}

// NewRedis creates a bus on the given redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Publish sends the payload on the topic's pub/sub channel.
func (b *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe consumes the topic's pub/sub channel on a background goroutine
// until the returned function or the context cancels it.
func (b *Redis) Subscribe(ctx context.Context, topic string, handler Handler) (func(), error) {
	sub := b.client.Subscribe(ctx, topic)

	// Force the subscription to be established before returning, so a
	// publish right after Subscribe is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close() //nolint:errcheck // Best effort on a failed subscribe.

		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		messages := sub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				handler(subCtx, []byte(msg.Payload))
			}
		}
	}()

	return func() {
		cancel()

		if err := sub.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close subscription", "topic", topic, "error", err)
		}
	}, nil
}
