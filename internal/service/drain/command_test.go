package drain

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/relay"
)

// TestRun_PrintsAndConsumesPending verifies the slot is consumed exactly
// once and the decision reaches the output when no consumer is configured.
func TestRun_PrintsAndConsumesPending(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	pendingPath := filepath.Join(dir, "pending.json")

	require.NoError(t, config.Save(cfgPath, &config.Config{PendingFile: pendingPath}))

	ctx := context.Background()
	store := relay.NewFileStore(pendingPath)

	require.NoError(t, store.Put(ctx, &order.PendingDecision{
		OrderID:    "order-5",
		Decision:   order.DecisionAccepted,
		CapturedAt: time.Now(),
	}))

	var buf bytes.Buffer

	require.NoError(t, Run(ctx, &Options{ConfigPath: cfgPath, Output: &buf}))
	require.Contains(t, buf.String(), "order-5")
	require.Contains(t, buf.String(), "accepted")

	// The slot is consume-once: a second drain finds nothing.
	buf.Reset()
	require.NoError(t, Run(ctx, &Options{ConfigPath: cfgPath, Output: &buf}))
	require.Empty(t, buf.String())
}
