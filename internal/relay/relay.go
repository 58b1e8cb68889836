package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/metrics"
)

// Consumer is the business layer's boundary as seen by the relay.
type Consumer interface {
	// Attached reports whether the consumer is currently reachable.
	Attached() bool
	// ApplyDecision hands over a decision. Called asynchronously; the
	// consumer must handle duplicate (orderID, decision) pairs
	// idempotently.
	ApplyDecision(ctx context.Context, orderID string, decision order.Decision)
	// OpenDetail asks the consumer to navigate to the order after a
	// decision resolved with no live surface to show it.
	OpenDetail(ctx context.Context, orderID string)
}

// PendingStore persists the single pending decision slot.
type PendingStore interface {
	// Put stores the decision. A same-order pending item makes Put an
	// idempotent no-op; a different order overwrites the undelivered one.
	Put(ctx context.Context, pending *order.PendingDecision) error
	// Take returns the stored decision and clears the slot atomically
	// with the read. It returns (nil, nil) when the slot is empty.
	Take(ctx context.Context) (*order.PendingDecision, error)
}

// Relay routes decisions to the consumer or the pending slot.
type Relay struct {
	// consumer is the business layer, may be nil when none is wired.
	consumer Consumer
	// pending is the persistent single-slot store.
	pending PendingStore
	// now is the clock, swappable in tests.
	now func() time.Time
}

// Option configures relay behaviour.
type Option func(*Relay)

// WithClock overrides the relay's clock.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a relay delivering to the given consumer and falling back to
// the pending store. Either may be nil.
func New(consumer Consumer, pending PendingStore, opts ...Option) *Relay {
	r := &Relay{
		consumer: consumer,
		pending:  pending,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Relay delivers the decision. Reachable consumer: direct asynchronous
// handoff. Unreachable: park as the pending decision.
func (r *Relay) Relay(ctx context.Context, orderID string, decision order.Decision) error {
	if r.consumer != nil && r.consumer.Attached() {
		metrics.DecisionsRelayed.Inc()
		logger.InfoKV(ctx, "Relaying decision to consumer", "order_id", orderID, "decision", decision)

		// Fire and forget: the relay never blocks the alert cycle on
		// the consumer. Detach from the caller's cancellation.
		callCtx := context.WithoutCancel(ctx)

		go r.consumer.ApplyDecision(callCtx, orderID, decision)

		return nil
	}

	if r.pending == nil {
		return fmt.Errorf("relay decision for order %s: no consumer and no pending store", orderID)
	}

	pending := &order.PendingDecision{
		OrderID:    orderID,
		Decision:   decision,
		CapturedAt: r.now(),
	}

	if err := r.pending.Put(ctx, pending); err != nil {
		return fmt.Errorf("store pending decision: %w", err)
	}

	metrics.PendingStored.Inc()
	logger.InfoKV(ctx, "Consumer unreachable, decision stored as pending",
		"order_id", orderID, "decision", decision)

	return nil
}

// DrainPending returns the pending decision at most once. Subsequent calls
// return nil until a new decision is parked.
func (r *Relay) DrainPending(ctx context.Context) (*order.PendingDecision, error) {
	if r.pending == nil {
		return nil, nil
	}

	pending, err := r.pending.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("drain pending decision: %w", err)
	}

	if pending != nil {
		metrics.PendingDrained.Inc()
		logger.InfoKV(ctx, "Pending decision drained",
			"order_id", pending.OrderID, "decision", pending.Decision)
	}

	return pending, nil
}
