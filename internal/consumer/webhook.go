package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
)

// DefaultCallTimeout bounds a single webhook call.
const DefaultCallTimeout = 10 * time.Second

// decisionPayload is the applyDecision request body. It carries the same
// field names as the cross-process handoff bag.
type decisionPayload struct {
	OrderID string `json:"order_id"`
	Action  string `json:"action"`
}

// detailPayload is the openDetail request body.
type detailPayload struct {
	OrderID string `json:"order_id"`
}

// Webhook delivers consumer calls over HTTP.
type Webhook struct {
	// http is the shared client with the call timeout.
	http *http.Client
	// base is the consumer's base URL; empty means detached.
	base string
	// breaker trips after repeated failures so the relay parks decisions
	// instead of hammering a dead endpoint.
	breaker *gobreaker.CircuitBreaker
}

// NewWebhook creates a consumer adapter for the given base URL. An empty
// base URL yields a permanently detached consumer.
func NewWebhook(base string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	settings := gobreaker.Settings{
		Name: "consumer-webhook",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Webhook{
		http:    &http.Client{Timeout: timeout},
		base:    strings.TrimRight(base, "/"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Attached reports whether the consumer is currently reachable: a base URL
// is configured and the breaker is not open.
func (w *Webhook) Attached() bool {
	return w.base != "" && w.breaker.State() != gobreaker.StateOpen
}

// ApplyDecision posts the decision to the consumer. Errors are logged, not
// returned: the call is fire-and-forget and duplicates are the consumer's
// to deduplicate.
func (w *Webhook) ApplyDecision(ctx context.Context, orderID string, decision order.Decision) {
	payload := decisionPayload{
		OrderID: orderID,
		Action:  decision.Action(),
	}

	if err := w.post(ctx, "/decisions", payload); err != nil {
		logger.ErrorKV(ctx, "applyDecision call failed",
			"order_id", orderID, "action", payload.Action, "error", err)

		return
	}

	logger.InfoKV(ctx, "Decision applied by consumer", "order_id", orderID, "action", payload.Action)
}

// OpenDetail asks the consumer to navigate to the order's detail view.
func (w *Webhook) OpenDetail(ctx context.Context, orderID string) {
	if err := w.post(ctx, "/orders/open", detailPayload{OrderID: orderID}); err != nil {
		logger.WarnKV(ctx, "openDetail call failed", "order_id", orderID, "error", err)
	}
}

// post sends one JSON request through the circuit breaker.
func (w *Webhook) post(ctx context.Context, path string, payload any) error {
	if w.base == "" {
		return fmt.Errorf("no consumer URL configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	_, err = w.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.base+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := w.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request: %w", err)
		}

		defer func() {
			_ = resp.Body.Close() //nolint:errcheck // Nothing useful to do on close failure.
		}()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("consumer responded with status %d", resp.StatusCode)
		}

		return nil, nil
	})

	return err
}
