package receiver

import (
	"context"
	"time"

	"github.com/oshokin/order-siren/internal/codec"
	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/metrics"
	"github.com/oshokin/order-siren/internal/store"
)

// FeedbackDriver abstracts the alerting driver the receiver starts and stops.
type FeedbackDriver interface {
	Start(ctx context.Context, alert *order.Alert)
	Stop()
}

// DecisionRelay abstracts decision delivery to the business layer.
type DecisionRelay interface {
	Relay(ctx context.Context, orderID string, decision order.Decision) error
}

// Presenter abstracts the presentation surface lifecycle.
type Presenter interface {
	// Materialize builds a fresh surface from the store's current alert.
	Materialize(ctx context.Context)
	// Refresh re-renders the surface after the alert content changed.
	Refresh(ctx context.Context)
	// Close tears the surface down.
	Close(ctx context.Context)
}

// Receiver turns raw delivery-channel events into alert cycle transitions.
type Receiver struct {
	// store is the alert state store, the single source of truth.
	store *store.Store
	// driver is the feedback loop, started once per cycle.
	driver FeedbackDriver
	// relay delivers captured decisions.
	relay DecisionRelay
	// presenter is the full-detail surface lifecycle.
	presenter Presenter
	// now is the clock used to stamp alerts at receipt, swappable in tests.
	now func() time.Time
}

// Option configures receiver behaviour.
type Option func(*Receiver)

// WithClock overrides the receipt timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(r *Receiver) {
		if now != nil {
			r.now = now
		}
	}
}

// New wires the receiver to its collaborators.
func New(st *store.Store, driver FeedbackDriver, relay DecisionRelay, presenter Presenter, opts ...Option) *Receiver {
	r := &Receiver{
		store:     st,
		driver:    driver,
		relay:     relay,
		presenter: presenter,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// OnEvent handles one raw payload from the delivery channel. Malformed
// payloads are dropped and logged; nothing here is allowed to take the host
// process down.
func (r *Receiver) OnEvent(ctx context.Context, raw []byte) {
	event, err := codec.Decode(raw, r.now())
	if err != nil {
		metrics.DecodeFailures.Inc()
		logger.WarnKV(ctx, "Dropping undecodable event", "error", err)

		return
	}

	metrics.EventsReceived.WithLabelValues(string(event.Kind)).Inc()

	switch event.Kind {
	case codec.KindDismiss:
		r.handleDismiss(ctx, event.OrderID)
	case codec.KindIncoming:
		r.handleIncoming(ctx, event.Alert)
	}
}

// handleDismiss forces the cycle back to idle. Dismiss overrides anything,
// including an in-progress decision capture.
func (r *Receiver) handleDismiss(ctx context.Context, orderID string) {
	active := r.store.ActiveOrderID()

	// A targeted dismiss for some other order is not ours to act on.
	if orderID != "" && active != "" && orderID != active {
		logger.InfoKV(ctx, "Ignoring dismiss for inactive order",
			"order_id", orderID, "active_order_id", active)

		return
	}

	previous := r.store.ForceIdle()
	r.driver.Stop()
	r.presenter.Close(ctx)

	if previous.Phase != store.PhaseIdle {
		logger.InfoKV(ctx, "Alert dismissed",
			"order_id", active, "previous_phase", previous.Phase.String())
	}
}

// handleIncoming runs the dedup rules and the Idle -> Ringing transition.
// The loop re-reads the store whenever a transition loses a race with a
// concurrent event, so back-to-back deliveries settle deterministically.
func (r *Receiver) handleIncoming(ctx context.Context, alert *order.Alert) {
	for {
		snap := r.store.Snapshot()

		switch snap.Phase {
		case store.PhaseIdle:
			if !r.store.BeginRinging(alert) {
				// A concurrent event won the transition; reclassify.
				continue
			}

			// The feedback loop starts only on the Idle -> Ringing edge.
			r.driver.Start(ctx, alert)
			r.presenter.Materialize(ctx)
			logger.InfoKV(ctx, "Alert ringing", "order_id", alert.OrderID)

			// A dismiss processed between the transition and Start has no
			// session to stop yet; settle against the store so the siren
			// never outlives the alert.
			if r.store.Snapshot().Phase == store.PhaseIdle {
				r.driver.Stop()
				r.presenter.Close(ctx)
			}

			return
		case store.PhaseRinging:
			if snap.Alert != nil && snap.Alert.OrderID == alert.OrderID {
				// Duplicate delivery: refresh content only, e.g. items
				// that were filled in late.
				metrics.DuplicatesDropped.Inc()

				if r.store.RefreshAlert(alert) {
					r.presenter.Refresh(ctx)
				}

				return
			}

			if !r.store.ReplaceAlert(alert) {
				continue
			}

			// Supersession: replace content, never restart the running
			// feedback loop.
			metrics.Supersessions.Inc()
			r.presenter.Refresh(ctx)
			logger.InfoKV(ctx, "Active alert superseded",
				"order_id", alert.OrderID, "replaced_order_id", snap.Alert.OrderID)

			return
		case store.PhaseDecided:
			// The cycle is already resolved; late duplicates are stale.
			metrics.DuplicatesDropped.Inc()
			logger.InfoKV(ctx, "Dropping stale incoming event", "order_id", alert.OrderID)

			return
		default:
			return
		}
	}
}

// OnDecision commits a decision captured on the surface against the
// generation it observed. It reports false when a dismiss or supersession
// won the race, in which case the decision is discarded, never relayed.
func (r *Receiver) OnDecision(ctx context.Context, generation uint64, orderID string, decision order.Decision) bool {
	if !r.store.CaptureDecision(generation, decision) {
		return false
	}

	metrics.DecisionsCaptured.WithLabelValues(decision.Action()).Inc()
	logger.InfoKV(ctx, "Decision captured", "order_id", orderID, "decision", decision)

	r.driver.Stop()
	r.presenter.Close(ctx)

	// A dismiss can still land between capture and delivery; it wins, and
	// the stale decision must not reach the relay.
	if !r.store.CompleteDelivery(orderID) {
		logger.InfoKV(ctx, "Captured decision dismissed before relay",
			"order_id", orderID, "decision", decision)

		return false
	}

	if err := r.relay.Relay(ctx, orderID, decision); err != nil {
		// The cycle is already complete; a decision that cannot reach
		// any sink is lost and that loss is surfaced here.
		logger.ErrorKV(ctx, "Failed to relay decision",
			"order_id", orderID, "decision", decision, "error", err)
	}

	return true
}
