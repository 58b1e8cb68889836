package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// Kind classifies a delivery-channel event.
type Kind string

const (
	// KindIncoming announces a newly placed order.
	KindIncoming Kind = "incoming"
	// KindDismiss cancels the active alert.
	KindDismiss Kind = "dismiss"
)

// Event is a decoded delivery-channel payload.
type Event struct {
	// Kind is the event discriminator.
	Kind Kind
	// OrderID identifies the order. For dismiss events it may be empty,
	// which dismisses whatever alert is active.
	OrderID string
	// Alert carries the full order for incoming events, nil otherwise.
	Alert *order.Alert
}

const (
	// defaultCustomerName is shown when the payload carries no name.
	defaultCustomerName = "Customer"
	// defaultProductName is shown for a line item without a name.
	defaultProductName = "Item"
	// defaultNumeric replaces absent numeric-looking display fields.
	defaultNumeric = "0"
)

var (
	// ErrMissingIdentity is returned when an incoming event has no order id.
	ErrMissingIdentity = errors.New("event is missing order id")
	// ErrUnknownKind is returned for an unrecognised event type.
	ErrUnknownKind = errors.New("unknown event kind")
)

// flexString unmarshals a JSON string or number into a string, so payloads
// that serialize prices and quantities as numbers still decode.
type flexString string

// UnmarshalJSON accepts both string and numeric JSON values.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = flexString(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*f = flexString(n.String())

	return nil
}

// wireEvent mirrors the inbound delivery-channel schema.
type wireEvent struct {
	Type       string          `json:"type"`
	OrderID    flexString      `json:"order_id"`
	Name       string          `json:"name"`
	TableNo    flexString      `json:"table_no"`
	Phone      flexString      `json:"phone"`
	Total      flexString      `json:"total"`
	ItemsCount flexString      `json:"items_count"`
	Items      json.RawMessage `json:"items"`
}

// wireItem mirrors one entry of the inbound items array.
type wireItem struct {
	N  string     `json:"n"`
	V  string     `json:"v"`
	Q  flexString `json:"q"`
	P  flexString `json:"p"`
	T  flexString `json:"t"`
	Op flexString `json:"op"`
}

// Decode parses a raw delivery-channel payload into an Event. The issuedAt
// timestamp is assigned by the caller at receipt time and stamped onto the
// resulting alert.
func Decode(raw []byte, issuedAt time.Time) (*Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	orderID := strings.TrimSpace(string(wire.OrderID))

	switch Kind(wire.Type) {
	case KindDismiss:
		// An empty order id dismisses whatever alert is active.
		return &Event{Kind: KindDismiss, OrderID: orderID}, nil
	case KindIncoming:
		if orderID == "" {
			return nil, ErrMissingIdentity
		}

		return &Event{
			Kind:    KindIncoming,
			OrderID: orderID,
			Alert:   decodeAlert(orderID, &wire, issuedAt),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, wire.Type)
	}
}

// decodeAlert builds a fully-defaulted alert from the wire payload.
func decodeAlert(orderID string, wire *wireEvent, issuedAt time.Time) *order.Alert {
	return &order.Alert{
		OrderID:      orderID,
		CustomerName: stringOr(wire.Name, defaultCustomerName),
		TableNo:      string(wire.TableNo),
		Phone:        string(wire.Phone),
		Total:        stringOr(string(wire.Total), defaultNumeric),
		ItemsCount:   stringOr(string(wire.ItemsCount), defaultNumeric),
		Items:        decodeItems(wire.Items),
		IssuedAt:     issuedAt,
	}
}

// decodeItems parses the items array, skipping entries that fail to parse
// individually. A malformed collection is treated as empty.
func decodeItems(raw json.RawMessage) []order.LineItem {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	items := make([]order.LineItem, 0, len(entries))

	for _, entry := range entries {
		var item wireItem
		if err := json.Unmarshal(entry, &item); err != nil {
			// One bad line item must not discard the rest.
			continue
		}

		items = append(items, order.LineItem{
			ProductName:       stringOr(item.N, defaultProductName),
			VariantName:       item.V,
			Quantity:          stringOr(string(item.Q), defaultNumeric),
			UnitPrice:         stringOr(string(item.P), defaultNumeric),
			LineTotal:         stringOr(string(item.T), defaultNumeric),
			OriginalUnitPrice: stringOr(string(item.Op), defaultNumeric),
		})
	}

	if len(items) == 0 {
		return nil
	}

	return items
}

// stringOr returns the trimmed value or the fallback when it is empty.
func stringOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}

	return fallback
}
