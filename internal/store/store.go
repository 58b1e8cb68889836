package store

import (
	"sync"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// Phase is the lifecycle state of the alert cycle.
type Phase int

const (
	// PhaseIdle means no active alert.
	PhaseIdle Phase = iota
	// PhaseRinging means exactly one alert is active with no decision yet.
	PhaseRinging
	// PhaseDecided means a decision has been captured for the active order
	// but may not have reached the consumer yet.
	PhaseDecided
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRinging:
		return "ringing"
	case PhaseDecided:
		return "decided"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the store at one generation.
type Snapshot struct {
	// Phase is the lifecycle state at the time of the snapshot.
	Phase Phase
	// Alert is a copy of the active alert, nil when idle.
	Alert *order.Alert
	// Decision is set once the phase is Decided.
	Decision order.Decision
	// Generation changes on every decision-relevant transition and is the
	// token for compare-and-swap mutations.
	Generation uint64
}

// Store is the alert state cell. The zero value is not usable; use New.
type Store struct {
	// mu guards every field below.
	mu sync.Mutex
	// phase is the current lifecycle state.
	phase Phase
	// alert is the active alert, nil while idle.
	alert *order.Alert
	// decision is the captured decision while Decided.
	decision order.Decision
	// generation is bumped by transitions that invalidate in-flight
	// decision captures. A same-order content refresh keeps it.
	generation uint64
}

// New returns a store initialized to Idle.
func New() *Store {
	return &Store{phase: PhaseIdle}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Phase:      s.phase,
		Alert:      s.alert.Clone(),
		Decision:   s.decision,
		Generation: s.generation,
	}
}

// BeginRinging starts a new alert cycle. It succeeds only from Idle and
// reports whether the transition happened.
func (s *Store) BeginRinging(alert *order.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle || alert == nil {
		return false
	}

	s.phase = PhaseRinging
	s.alert = alert.Clone()
	s.decision = ""
	s.generation++

	return true
}

// ReplaceAlert swaps the active alert for a different order while Ringing.
// The generation is bumped, so a decision mid-capture for the replaced order
// can no longer commit.
func (s *Store) ReplaceAlert(alert *order.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRinging || alert == nil || s.alert == nil {
		return false
	}

	if s.alert.OrderID == alert.OrderID {
		return false
	}

	s.alert = alert.Clone()
	s.generation++

	return true
}

// RefreshAlert replaces the active alert's content for the same order, e.g.
// when a duplicate delivery fills in items that arrived late. The generation
// is kept, so an in-flight decision capture for this order still commits.
func (s *Store) RefreshAlert(alert *order.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRinging || alert == nil || s.alert == nil {
		return false
	}

	if s.alert.OrderID != alert.OrderID {
		return false
	}

	s.alert = alert.Clone()

	return true
}

// CaptureDecision commits a decision against the generation observed when
// the gesture began. It fails when the generation moved underneath the
// capture (a dismiss or supersession won the race) or the store is not
// Ringing.
func (s *Store) CaptureDecision(generation uint64, decision order.Decision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRinging || s.generation != generation || !decision.Valid() {
		return false
	}

	s.phase = PhaseDecided
	s.decision = decision
	s.generation++

	return true
}

// ForceIdle unconditionally resets the cycle. Dismiss always wins: any
// decision not yet committed is invalidated by the generation bump.
// It returns the previous snapshot so callers can log what was discarded.
func (s *Store) ForceIdle() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := Snapshot{
		Phase:      s.phase,
		Alert:      s.alert,
		Decision:   s.decision,
		Generation: s.generation,
	}

	s.phase = PhaseIdle
	s.alert = nil
	s.decision = ""
	s.generation++

	return previous
}

// CompleteDelivery closes the cycle after the captured decision reached the
// relay. It succeeds only from Decided for the matching order.
func (s *Store) CompleteDelivery(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseDecided || s.alert == nil || s.alert.OrderID != orderID {
		return false
	}

	s.phase = PhaseIdle
	s.alert = nil
	s.decision = ""
	s.generation++

	return true
}

// ActiveOrderID returns the active order's id, or empty when idle.
func (s *Store) ActiveOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert == nil {
		return ""
	}

	return s.alert.OrderID
}
