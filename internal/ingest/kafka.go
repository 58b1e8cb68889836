package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/oshokin/order-siren/internal/logger"
)

const (
	// maxPollWait bounds how long a fetch waits for new messages.
	maxPollWait = 500 * time.Millisecond
	// commitInterval batches offset commits for at-least-once delivery.
	commitInterval = time.Second
	// maxMessageBytes caps a single fetched batch.
	maxMessageBytes = 10e6
)

// Handler processes one raw order event payload.
type Handler func(ctx context.Context, payload []byte)

// messageReader abstracts the kafka reader so the run loop is testable.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Source consumes order events from a Kafka topic.
type Source struct {
	// reader is the consumer-group reader.
	reader messageReader
	// handler receives every fetched payload.
	handler Handler
}

// ParseBrokers splits a comma-separated broker list and trims whitespace.
func ParseBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}

	list := strings.Split(brokers, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}

	return list
}

// NewKafkaSource creates a source reading the topic within the group.
func NewKafkaSource(brokers []string, topic, groupID string, handler Handler) (*Source, error) {
	if len(brokers) == 0 || topic == "" || groupID == "" {
		return nil, errors.New("brokers, topic and group id are all required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       maxMessageBytes,
		MaxWait:        maxPollWait,
		CommitInterval: commitInterval,
		StartOffset:    kafka.FirstOffset,
	})

	return &Source{
		reader:  reader,
		handler: handler,
	}, nil
}

// Run fetches messages until the context is canceled, handing every payload
// to the handler. Fetch errors other than cancellation are logged and the
// loop keeps going.
func (s *Source) Run(ctx context.Context) error {
	defer func() {
		if err := s.reader.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close kafka reader", "error", err)
		}
	}()

	for {
		message, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}

			if errors.Is(err, kafka.ErrGroupClosed) {
				return nil
			}

			logger.ErrorKV(ctx, "Kafka read failed", "error", err)

			// Transient broker errors should not spin hot.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
				continue
			}
		}

		s.handler(ctx, message.Value)
	}
}

// NewPublisher creates a writer publishing order events to the topic, used
// by the tooling binaries when a Kafka deployment carries the channel.
func NewPublisher(brokers []string, topic string) (*kafka.Writer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, errors.New("brokers and topic are required")
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}, nil
}

// Publish sends one payload through the writer.
func Publish(ctx context.Context, writer *kafka.Writer, payload []byte) error {
	if err := writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}

	return nil
}
