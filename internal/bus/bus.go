package bus

import "context"

// Well-known topics of the alert subsystem.
const (
	// TopicOrderEvents carries incoming and dismiss events.
	TopicOrderEvents = "order-siren.events"
)

// Handler processes one published payload.
type Handler func(ctx context.Context, payload []byte)

// Bus is a topic-based publish/subscribe channel.
type Bus interface {
	// Publish delivers the payload to all current subscribers of the topic.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers a handler for the topic and returns a function
	// that removes the subscription.
	Subscribe(ctx context.Context, topic string, handler Handler) (func(), error)
}
