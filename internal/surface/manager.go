package surface

import (
	"context"
	"sync"

	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/store"
)

// Manager owns the current surface instance and rebuilds it from the store
// whenever the orchestrator asks. The store stays the source of truth; the
// manager only decides between reusing, refreshing and recreating the view.
type Manager struct {
	// store is the alert state store surfaces are materialized from.
	store *store.Store
	// track is the slide control geometry for new surfaces.
	track Track

	// mu guards commit and current.
	mu sync.Mutex
	// commit is handed to every new surface; bound after construction to
	// break the wiring cycle with the receiver.
	commit CommitFunc
	// current is the live surface, nil when nothing is presented.
	current *Surface
}

// NewManager creates a manager materializing surfaces from the given store.
func NewManager(st *store.Store, track Track) *Manager {
	return &Manager{
		store: st,
		track: track,
	}
}

// Bind sets the decision commit function for subsequently created surfaces.
func (m *Manager) Bind(commit CommitFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commit = commit
}

// Materialize builds a fresh surface from the store's current alert,
// replacing and closing any previous one.
func (m *Manager) Materialize(ctx context.Context) {
	snap := m.store.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
		m.current = nil
	}

	if snap.Phase != store.PhaseRinging {
		return
	}

	m.current = New(snap, m.track, m.commit)
	if m.current != nil {
		logger.InfoKV(ctx, "Presentation surface materialized", "order_id", snap.Alert.OrderID)
	}
}

// Refresh updates the live surface's content in place when the active order
// matches, and re-materializes otherwise. A same-order refresh keeps the
// surface instance so its processing latch survives.
func (m *Manager) Refresh(ctx context.Context) {
	snap := m.store.Snapshot()

	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if snap.Phase != store.PhaseRinging || snap.Alert == nil {
		m.Close(ctx)

		return
	}

	if current != nil && !current.Closed() && current.OrderID() == snap.Alert.OrderID {
		current.Refresh(snap.Alert)

		return
	}

	m.Materialize(ctx)
}

// Close destroys the live surface, if any.
func (m *Manager) Close(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

// Current returns the live surface, or nil when nothing is presented.
func (m *Manager) Current() *Surface {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}
