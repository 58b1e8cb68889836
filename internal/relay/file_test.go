package relay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// tempStore builds a file store in a per-test directory.
func tempStore(t *testing.T) *FileStore {
	t.Helper()

	return NewFileStore(filepath.Join(t.TempDir(), "pending.json"))
}

// TestFileStore_PutTake verifies the slot round-trips through disk and
// drains exactly once.
func TestFileStore_PutTake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := tempStore(t)

	// Empty slot drains to nothing.
	pending, err := s.Take(ctx)
	require.NoError(t, err)
	require.Nil(t, pending)

	stored := &order.PendingDecision{
		OrderID:    "100",
		Decision:   order.DecisionAccepted,
		CapturedAt: time.Unix(1000, 0).UTC(),
	}
	require.NoError(t, s.Put(ctx, stored))

	pending, err = s.Take(ctx)
	require.NoError(t, err)
	require.Equal(t, stored, pending)

	pending, err = s.Take(ctx)
	require.NoError(t, err)
	require.Nil(t, pending)
}

// TestFileStore_SlotRules covers same-order no-op and different-order
// overwrite against the on-disk slot.
func TestFileStore_SlotRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := tempStore(t)

	require.NoError(t, s.Put(ctx, &order.PendingDecision{OrderID: "100", Decision: order.DecisionAccepted}))
	require.NoError(t, s.Put(ctx, &order.PendingDecision{OrderID: "100", Decision: order.DecisionRejected}))

	pending, err := s.Take(ctx)
	require.NoError(t, err)
	require.Equal(t, order.DecisionAccepted, pending.Decision)

	require.NoError(t, s.Put(ctx, &order.PendingDecision{OrderID: "100", Decision: order.DecisionAccepted}))
	require.NoError(t, s.Put(ctx, &order.PendingDecision{OrderID: "101", Decision: order.DecisionRejected}))

	pending, err = s.Take(ctx)
	require.NoError(t, err)
	require.Equal(t, "101", pending.OrderID)
}

// TestFileStore_SurvivesRestart asserts a new store instance on the same
// path still sees the parked decision.
func TestFileStore_SurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.json")

	require.NoError(t, NewFileStore(path).Put(ctx, &order.PendingDecision{
		OrderID:  "100",
		Decision: order.DecisionAccepted,
	}))

	pending, err := NewFileStore(path).Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.Equal(t, "100", pending.OrderID)
}

// TestFileStore_CorruptSlotDropped asserts a corrupt file reads as empty
// instead of wedging the relay.
func TestFileStore_CorruptSlotDropped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	pending, err := NewFileStore(path).Take(ctx)
	require.NoError(t, err)
	require.Nil(t, pending)
}
