package receiver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/driver"
	"github.com/oshokin/order-siren/internal/store"
)

// fakeDriver counts Start and Stop calls for the feedback-session invariants.
type fakeDriver struct {
	// mu guards the counters.
	mu     sync.Mutex
	starts int
	stops  int
}

// Start records a session start.
func (f *fakeDriver) Start(context.Context, *order.Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts++
}

// Stop records a session stop.
func (f *fakeDriver) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++
}

// counts returns the recorded start and stop totals.
func (f *fakeDriver) counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.starts, f.stops
}

// fakeRelay records relayed decisions.
type fakeRelay struct {
	// err is returned from Relay when set.
	err error

	// mu guards relayed.
	mu      sync.Mutex
	relayed []string
}

// Relay records the delivery.
func (f *fakeRelay) Relay(_ context.Context, orderID string, decision order.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.relayed = append(f.relayed, orderID+"/"+string(decision))

	return f.err
}

// calls returns a copy of the recorded deliveries.
func (f *fakeRelay) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.relayed...)
}

// fakePresenter counts surface lifecycle calls.
type fakePresenter struct {
	// mu guards the counters.
	mu           sync.Mutex
	materialized int
	refreshed    int
	closed       int
}

// Materialize records a fresh surface build.
func (f *fakePresenter) Materialize(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.materialized++
}

// Refresh records a content re-render.
func (f *fakePresenter) Refresh(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshed++
}

// Close records a surface teardown.
func (f *fakePresenter) Close(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++
}

// counts returns the recorded lifecycle totals.
func (f *fakePresenter) counts() (materialized, refreshed, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.materialized, f.refreshed, f.closed
}

// harness bundles the receiver with its fakes and store.
type harness struct {
	store     *store.Store
	driver    *fakeDriver
	relay     *fakeRelay
	presenter *fakePresenter
	receiver  *Receiver
}

// newHarness wires a receiver over fresh fakes.
func newHarness() *harness {
	h := &harness{
		store:     store.New(),
		driver:    new(fakeDriver),
		relay:     new(fakeRelay),
		presenter: new(fakePresenter),
	}

	h.receiver = New(h.store, h.driver, h.relay, h.presenter)

	return h
}

// incoming builds a raw incoming event payload.
func incoming(orderID string) []byte {
	return fmt.Appendf(nil,
		`{"type": "incoming", "order_id": %q, "name": "Asha", "total": "250", "items_count": "2"}`, orderID)
}

// dismiss builds a raw dismiss event payload.
func dismiss(orderID string) []byte {
	return fmt.Appendf(nil, `{"type": "dismiss", "order_id": %q}`, orderID)
}

// TestReceiver_IncomingStartsCycle covers the Idle -> Ringing scenario.
func TestReceiver_IncomingStartsCycle(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))

	snap := h.store.Snapshot()
	require.Equal(t, store.PhaseRinging, snap.Phase)
	require.Equal(t, "100", snap.Alert.OrderID)
	require.Equal(t, "Asha", snap.Alert.CustomerName)
	require.Equal(t, "250", snap.Alert.Total)

	starts, _ := h.driver.counts()
	require.Equal(t, 1, starts)

	materialized, _, _ := h.presenter.counts()
	require.Equal(t, 1, materialized)
}

// TestReceiver_DuplicateDoesNotRestart asserts a duplicate delivery keeps
// the feedback session count at one and only refreshes content.
func TestReceiver_DuplicateDoesNotRestart(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))
	h.receiver.OnEvent(ctx, incoming("100"))

	starts, _ := h.driver.counts()
	require.Equal(t, 1, starts)

	materialized, refreshed, _ := h.presenter.counts()
	require.Equal(t, 1, materialized)
	require.Equal(t, 1, refreshed)
}

// TestReceiver_SupersessionKeepsSession asserts a different order replaces
// the content without a second feedback session.
func TestReceiver_SupersessionKeepsSession(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))
	h.receiver.OnEvent(ctx, incoming("101"))

	require.Equal(t, "101", h.store.ActiveOrderID())

	starts, _ := h.driver.counts()
	require.Equal(t, 1, starts)
}

// TestReceiver_LateItemsRefreshContent asserts a same-order duplicate with a
// richer payload updates the stored alert in place.
func TestReceiver_LateItemsRefreshContent(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))
	require.Empty(t, h.store.Snapshot().Alert.Items)

	h.receiver.OnEvent(ctx, []byte(`{
		"type": "incoming", "order_id": "100",
		"items": [{"n": "Masala Dosa", "q": "2", "t": "250"}]
	}`))

	require.Len(t, h.store.Snapshot().Alert.Items, 1)
}

// TestReceiver_UndecodableDropped asserts malformed payloads change nothing.
func TestReceiver_UndecodableDropped(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, []byte(`{"type": "incoming"}`))
	h.receiver.OnEvent(ctx, []byte(`garbage`))
	h.receiver.OnEvent(ctx, []byte(`{"type": "mystery", "order_id": "1"}`))

	require.Equal(t, store.PhaseIdle, h.store.Snapshot().Phase)

	starts, _ := h.driver.counts()
	require.Zero(t, starts)
}

// TestReceiver_DismissForcesIdle covers targeted, wildcard and mismatched
// dismiss events.
func TestReceiver_DismissForcesIdle(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))

	// A dismiss for some other order is ignored.
	h.receiver.OnEvent(ctx, dismiss("999"))
	require.Equal(t, store.PhaseRinging, h.store.Snapshot().Phase)

	h.receiver.OnEvent(ctx, dismiss("100"))
	require.Equal(t, store.PhaseIdle, h.store.Snapshot().Phase)

	_, stops := h.driver.counts()
	require.Equal(t, 1, stops)

	_, _, closed := h.presenter.counts()
	require.Equal(t, 1, closed)

	// Wildcard dismiss clears whatever is active.
	h.receiver.OnEvent(ctx, incoming("101"))
	h.receiver.OnEvent(ctx, []byte(`{"type": "dismiss"}`))
	require.Equal(t, store.PhaseIdle, h.store.Snapshot().Phase)
}

// TestReceiver_DecisionRoundtrip covers capture, relay and cycle completion.
func TestReceiver_DecisionRoundtrip(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))

	observed := h.store.Snapshot().Generation
	require.True(t, h.receiver.OnDecision(ctx, observed, "100", order.DecisionAccepted))

	require.Equal(t, []string{"100/accepted"}, h.relay.calls())
	require.Equal(t, store.PhaseIdle, h.store.Snapshot().Phase)

	_, stops := h.driver.counts()
	require.Equal(t, 1, stops)

	// A fresh order starts a fresh cycle with a second session.
	h.receiver.OnEvent(ctx, incoming("101"))

	starts, _ := h.driver.counts()
	require.Equal(t, 2, starts)
}

// TestReceiver_DismissBeatsCapture asserts a decision committing against a
// stale generation is discarded and never relayed.
func TestReceiver_DismissBeatsCapture(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))

	// The operator begins the gesture, observing this generation.
	observed := h.store.Snapshot().Generation

	// Dismiss lands first.
	h.receiver.OnEvent(ctx, dismiss("100"))

	require.False(t, h.receiver.OnDecision(ctx, observed, "100", order.DecisionAccepted))
	require.Empty(t, h.relay.calls())
	require.Equal(t, store.PhaseIdle, h.store.Snapshot().Phase)
}

// TestReceiver_SupersessionBeatsCapture asserts a decision for the replaced
// order cannot commit against the superseding one.
func TestReceiver_SupersessionBeatsCapture(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))
	observed := h.store.Snapshot().Generation

	h.receiver.OnEvent(ctx, incoming("101"))

	require.False(t, h.receiver.OnDecision(ctx, observed, "100", order.DecisionAccepted))
	require.Empty(t, h.relay.calls())
	require.Equal(t, "101", h.store.ActiveOrderID())
}

// TestReceiver_StaleAfterDecisionDropped asserts incoming events during
// Decided are dropped as stale duplicates.
func TestReceiver_StaleAfterDecisionDropped(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	h.receiver.OnEvent(ctx, incoming("100"))
	observed := h.store.Snapshot().Generation

	// Capture directly on the store to hold the Decided phase open.
	require.True(t, h.store.CaptureDecision(observed, order.DecisionAccepted))

	h.receiver.OnEvent(ctx, incoming("100"))
	h.receiver.OnEvent(ctx, incoming("102"))

	starts, _ := h.driver.counts()
	require.Equal(t, 1, starts)
	require.Equal(t, store.PhaseDecided, h.store.Snapshot().Phase)
}

// sessionDriver mirrors the real driver's session flag: the session reads as
// active only once Start has finished, so a Stop landing mid-Start has
// nothing to stop yet.
type sessionDriver struct {
	// onStart runs once inside Start, before the session becomes active.
	onStart func()

	// active mirrors the session flag.
	active atomic.Bool
}

// Start runs the hook, then marks the session active.
func (f *sessionDriver) Start(context.Context, *order.Alert) {
	if hook := f.onStart; hook != nil {
		f.onStart = nil
		hook()
	}

	f.active.Store(true)
}

// Stop deactivates the session.
func (f *sessionDriver) Stop() {
	f.active.Store(false)
}

// TestReceiver_DismissDuringStartStopsSession covers a dismiss processed
// after the Idle -> Ringing transition but before the feedback session is
// running: its Stop has nothing to stop, so the incoming path must settle
// against the store and end the session it just started.
func TestReceiver_DismissDuringStartStopsSession(t *testing.T) {
	t.Parallel()

	st := store.New()
	drv := new(sessionDriver)
	pres := new(fakePresenter)
	r := New(st, drv, new(fakeRelay), pres)

	ctx := context.Background()
	drv.onStart = func() {
		r.OnEvent(ctx, dismiss("100"))
	}

	r.OnEvent(ctx, incoming("100"))

	require.Equal(t, store.PhaseIdle, st.Snapshot().Phase)
	require.False(t, drv.active.Load())

	_, _, closed := pres.counts()
	require.NotZero(t, closed)
}

// TestReceiver_ConcurrentDismissNeverLeaksSession races incoming against
// dismiss over a real driver; whenever the store settles to Idle there must
// be no feedback session left running.
func TestReceiver_ConcurrentDismissNeverLeaksSession(t *testing.T) {
	t.Parallel()

	st := store.New()
	drv := driver.New(nil, time.Hour)
	r := New(st, drv, new(fakeRelay), new(fakePresenter))

	ctx := context.Background()

	for i := 0; i < 300; i++ {
		var wg sync.WaitGroup

		wg.Add(2)

		go func() {
			defer wg.Done()
			r.OnEvent(ctx, incoming("100"))
		}()

		go func() {
			defer wg.Done()
			r.OnEvent(ctx, dismiss(""))
		}()

		wg.Wait()

		if st.Snapshot().Phase == store.PhaseIdle {
			require.False(t, drv.Active())
		}

		// Reset for the next round.
		r.OnEvent(ctx, dismiss(""))
		require.False(t, drv.Active())
	}
}

// TestReceiver_ConcurrentIncoming floods the receiver from many goroutines;
// exactly one feedback session may start between consecutive idle states.
func TestReceiver_ConcurrentIncoming(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()
			h.receiver.OnEvent(ctx, incoming(fmt.Sprintf("10%d", i%4)))
		}()
	}

	wg.Wait()

	starts, _ := h.driver.counts()
	require.Equal(t, 1, starts)
	require.Equal(t, store.PhaseRinging, h.store.Snapshot().Phase)
}
