package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/metrics"
)

// Output is the loud feedback channel the driver loops on.
type Output interface {
	// Acquire grabs the channel and raises it to the loudest available
	// configuration. The returned restore function puts the channel back
	// to its prior configuration and must be safe to call exactly once.
	Acquire(ctx context.Context) (restore func(), err error)
	// Ring plays one cycle of the alert clip and vibration pattern.
	// It should return promptly when the context is canceled.
	Ring(ctx context.Context) error
}

// DefaultRingInterval is the pause between feedback cycles.
const DefaultRingInterval = 2 * time.Second

// Driver runs the feedback session for the active alert.
type Driver struct {
	// out is the acquired-and-released output channel.
	out Output
	// interval is the pause between Ring cycles.
	interval time.Duration

	// active is the single session flag. Written only under mu, together
	// with cancel and done, so a Stop that observes an active session
	// always finds something to cancel. Read lock-free by Active.
	active atomic.Bool

	// mu serializes Start/Stop and guards cancel and done.
	mu sync.Mutex
	// cancel stops the running feedback loop.
	cancel context.CancelFunc
	// done is closed when the feedback loop goroutine exits.
	done chan struct{}
}

// New creates a driver looping on the provided output channel.
func New(out Output, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultRingInterval
	}

	return &Driver{
		out:      out,
		interval: interval,
	}
}

// Active reports whether a feedback session is running.
func (d *Driver) Active() bool {
	return d.active.Load()
}

// Start begins a feedback session for the alert. It is a no-op when a
// session is already active, so redundant calls from racing paths are safe.
func (d *Driver) Start(ctx context.Context, alert *order.Alert) {
	d.mu.Lock()

	if d.active.Load() {
		d.mu.Unlock()

		return
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	// cancel and done must be visible before the session reads as active,
	// otherwise a concurrent Stop finds nothing to cancel and the loop
	// outlives the session.
	d.cancel = cancel
	d.done = done
	d.active.Store(true)
	d.mu.Unlock()

	metrics.FeedbackSessionsStarted.Inc()

	orderID := ""
	if alert != nil {
		orderID = alert.OrderID
	}

	logger.InfoKV(ctx, "Feedback session started", "order_id", orderID)

	go d.loop(loopCtx, done, orderID)
}

// Stop ends the session and waits for the loop to release the output
// channel. It is a no-op when no session is active.
func (d *Driver) Stop() {
	d.mu.Lock()

	if !d.active.Load() {
		d.mu.Unlock()

		return
	}

	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.active.Store(false)
	d.mu.Unlock()

	cancel()
	<-done
}

// loop acquires the output channel, rings until canceled and restores the
// channel on every exit path.
func (d *Driver) loop(ctx context.Context, done chan struct{}, orderID string) {
	defer close(done)

	if d.out == nil {
		<-ctx.Done()

		return
	}

	restore, err := d.out.Acquire(ctx)
	if restore != nil {
		defer restore()
	}

	if err != nil {
		// Degrade to visual-only: the session stays active so dedup
		// still holds, but nothing audible happens.
		logger.WarnKV(ctx, "Audio channel unavailable, alert degrades to visual-only",
			"order_id", orderID, "error", err)
		<-ctx.Done()

		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if err := d.out.Ring(ctx); err != nil && ctx.Err() == nil {
			logger.WarnKV(ctx, "Feedback cycle failed", "order_id", orderID, "error", err)
		}

		select {
		case <-ctx.Done():
			logger.InfoKV(ctx, "Feedback session stopped", "order_id", orderID)

			return
		case <-ticker.C:
		}
	}
}
