package relay

import (
	"context"
	"sync"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// MemoryStore is an in-process single-slot pending store for tests and
// single-binary deployments that accept losing a pending decision on crash.
type MemoryStore struct {
	// mu guards the slot.
	mu sync.Mutex
	// slot holds the single pending decision, nil when empty.
	slot *order.PendingDecision
}

// NewMemoryStore creates an empty in-memory slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put stores the decision with the single-slot overwrite rules.
func (m *MemoryStore) Put(_ context.Context, pending *order.PendingDecision) error {
	if pending == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Same-order redelivery attempts are idempotent no-ops.
	if m.slot != nil && m.slot.OrderID == pending.OrderID {
		return nil
	}

	m.slot = pending.Clone()

	return nil
}

// Take clears and returns the slot atomically.
func (m *MemoryStore) Take(_ context.Context) (*order.PendingDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.slot
	m.slot = nil

	return pending, nil
}
