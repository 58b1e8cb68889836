package common

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	kafka "github.com/segmentio/kafka-go"

	"github.com/oshokin/order-siren/internal/bus"
	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/ingest"
)

// ErrNoReachableChannel indicates the configuration offers no transport a
// separate process can publish through.
var ErrNoReachableChannel = errors.New(
	"no reachable delivery channel: configure kafka brokers or the redis transport")

// Publisher sends raw order events into the daemon's delivery channel.
type Publisher interface {
	// Publish delivers one payload.
	Publish(ctx context.Context, payload []byte) error
	// Close releases the underlying connection.
	Close() error
}

// NewPublisher builds a publisher from configuration. Kafka wins when
// brokers are configured; otherwise the redis bus is used. The in-process
// transport cannot be reached from another process.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.KafkaBrokers != "" {
		writer, err := ingest.NewPublisher(ingest.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}

		return &kafkaPublisher{writer: writer}, nil
	}

	if cfg.BusTransport == config.TransportRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})

		return &redisPublisher{
			client:  client,
			channel: bus.NewRedis(client),
		}, nil
	}

	return nil, ErrNoReachableChannel
}

// kafkaPublisher publishes through a kafka writer.
type kafkaPublisher struct {
	writer *kafka.Writer
}

// Publish sends the payload to the order events topic.
func (p *kafkaPublisher) Publish(ctx context.Context, payload []byte) error {
	return ingest.Publish(ctx, p.writer, payload)
}

// Close closes the writer.
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// redisPublisher publishes through the redis bus.
type redisPublisher struct {
	client  *redis.Client
	channel bus.Bus
}

// Publish sends the payload to the order events topic.
func (p *redisPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.channel.Publish(ctx, bus.TopicOrderEvents, payload)
}

// Close closes the redis connection.
func (p *redisPublisher) Close() error {
	return p.client.Close()
}
