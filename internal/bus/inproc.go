package bus

import (
	"context"
	"sync"
)

// InProc is an in-process bus. Publish dispatches to subscribers
// synchronously, which keeps tests deterministic; handlers that need
// concurrency spawn their own goroutines.
type InProc struct {
	// mu guards subscribers.
	mu sync.RWMutex
	// subscribers maps topic to registered handlers by subscription id.
	subscribers map[string]map[int]Handler
	// nextID issues subscription ids.
	nextID int
}

// NewInProc creates an empty in-process bus.
func NewInProc() *InProc {
	return &InProc{
		subscribers: make(map[string]map[int]Handler),
	}
}

// Publish delivers the payload to every subscriber of the topic.
func (b *InProc) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()

	handlers := make([]Handler, 0, len(b.subscribers[topic]))
	for _, h := range b.subscribers[topic] {
		handlers = append(handlers, h)
	}

	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, payload)
	}

	return nil
}

// Subscribe registers the handler and returns its removal function.
func (b *InProc) Subscribe(_ context.Context, topic string, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[int]Handler)
	}

	id := b.nextID
	b.nextID++
	b.subscribers[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.subscribers[topic], id)
	}, nil
}
