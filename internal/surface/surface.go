package surface

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/store"
)

// currencyPrefix decorates money amounts in the render model.
const currencyPrefix = "₹"

// CommitFunc delivers a captured decision to the orchestrator. It reports
// whether the decision committed; a false return means a dismiss or a
// supersession won the race and the decision was discarded.
type CommitFunc func(ctx context.Context, generation uint64, orderID string, decision order.Decision) bool

// Model is the surface's view of the active alert, ready for display.
type Model struct {
	// OrderID identifies the displayed order.
	OrderID string
	// CustomerName is the customer's display name.
	CustomerName string
	// TableNo is the table number, may be empty.
	TableNo string
	// Phone is the customer's phone number, may be empty.
	Phone string
	// TotalLabel is the decorated order total, e.g. "₹250".
	TotalLabel string
	// ItemsLabel summarizes the item count, e.g. "2 item(s)".
	ItemsLabel string
	// ItemLines renders one line per order item; empty when the payload
	// carried no parseable items, in which case ItemsLabel stands in.
	ItemLines []string
}

// Surface is one instance of the full-detail alert view.
type Surface struct {
	// generation is the store generation observed at materialization;
	// decisions commit against it.
	generation uint64
	// commit hands captured decisions to the orchestrator.
	commit CommitFunc
	// gesture is the slide-to-decide state machine.
	gesture *Gesture

	// mu guards alert and gesture access.
	mu sync.Mutex
	// alert is the displayed alert content.
	alert *order.Alert

	// latched flips on the first decisive release; further input is
	// ignored so a fast repeated gesture cannot double-submit.
	latched atomic.Bool
	// closed marks the surface as destroyed.
	closed atomic.Bool
}

// New materializes a surface for the given snapshot. It returns nil when the
// snapshot holds no active alert, since there is nothing to present.
func New(snap store.Snapshot, track Track, commit CommitFunc) *Surface {
	if snap.Alert == nil {
		return nil
	}

	return &Surface{
		generation: snap.Generation,
		commit:     commit,
		gesture:    NewGesture(track),
		alert:      snap.Alert,
	}
}

// Render builds the display model from the current alert content.
func (s *Surface) Render() Model {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := s.alert

	model := Model{
		OrderID:      alert.OrderID,
		CustomerName: alert.CustomerName,
		TableNo:      alert.TableNo,
		Phone:        alert.Phone,
		TotalLabel:   currencyPrefix + alert.Total,
		ItemsLabel:   fmt.Sprintf("%s item(s)", alert.ItemsCount),
	}

	for _, item := range alert.Items {
		name := item.ProductName
		if item.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, item.VariantName)
		}

		model.ItemLines = append(model.ItemLines,
			fmt.Sprintf("%s x %s = %s%s", item.Quantity, name, currencyPrefix, item.LineTotal))
	}

	return model
}

// OrderID returns the displayed order's id.
func (s *Surface) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.alert.OrderID
}

// Refresh swaps in richer content for the same order, e.g. items that were
// filled in by a late duplicate delivery. The latch and gesture are kept.
func (s *Surface) Refresh(alert *order.Alert) {
	if alert == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert.OrderID == alert.OrderID {
		s.alert = alert
	}
}

// Grab starts the slide gesture. Input is ignored once a decision committed
// or the surface closed.
func (s *Surface) Grab() {
	if s.inputBlocked() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gesture.Grab()
}

// Drag moves the slide control and returns the effective offset.
func (s *Surface) Drag(offset float64) float64 {
	if s.inputBlocked() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gesture.Drag(offset)
}

// Release ends the gesture. A decisive release latches the surface and
// commits the decision exactly once; a short release springs back.
func (s *Surface) Release(ctx context.Context) Verdict {
	if s.inputBlocked() {
		return VerdictNone
	}

	s.mu.Lock()
	verdict := s.gesture.Release()
	orderID := s.alert.OrderID
	s.mu.Unlock()

	if verdict == VerdictNone {
		return VerdictNone
	}

	// Processing latch: only the first decisive release gets through.
	if !s.latched.CompareAndSwap(false, true) {
		return VerdictNone
	}

	decision := order.DecisionAccepted
	if verdict == VerdictReject {
		decision = order.DecisionRejected
	}

	if s.commit != nil && !s.commit(ctx, s.generation, orderID, decision) {
		logger.InfoKV(ctx, "Decision discarded, dismiss or supersession won the race",
			"order_id", orderID, "decision", decision)
	}

	return verdict
}

// Close destroys the surface; all further input is ignored.
func (s *Surface) Close() {
	s.closed.Store(true)
}

// Closed reports whether the surface was destroyed.
func (s *Surface) Closed() bool {
	return s.closed.Load()
}

// inputBlocked reports whether the surface should ignore gesture input.
func (s *Surface) inputBlocked() bool {
	return s.closed.Load() || s.latched.Load()
}
