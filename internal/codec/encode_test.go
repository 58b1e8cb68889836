package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// TestEncodeIncoming_RoundTrip verifies a published announcement decodes
// back into the same alert content.
func TestEncodeIncoming_RoundTrip(t *testing.T) {
	t.Parallel()

	alert := &order.Alert{
		OrderID:      "order-42",
		CustomerName: "Asha",
		TableNo:      "7",
		Phone:        "9876543210",
		Total:        "250",
		ItemsCount:   "2",
		Items: []order.LineItem{
			{
				ProductName:       "Masala Dosa",
				VariantName:       "Large",
				Quantity:          "2",
				UnitPrice:         "125",
				LineTotal:         "250",
				OriginalUnitPrice: "140",
			},
		},
	}

	payload, err := EncodeIncoming(alert)
	require.NoError(t, err)

	issuedAt := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	event, err := Decode(payload, issuedAt)
	require.NoError(t, err)
	require.Equal(t, KindIncoming, event.Kind)
	require.Equal(t, "order-42", event.OrderID)

	alert.IssuedAt = issuedAt
	require.Equal(t, alert, event.Alert)
}

// TestEncodeIncoming_RequiresOrderID rejects anonymous announcements.
func TestEncodeIncoming_RequiresOrderID(t *testing.T) {
	t.Parallel()

	_, err := EncodeIncoming(nil)
	require.ErrorIs(t, err, ErrMissingIdentity)

	_, err = EncodeIncoming(&order.Alert{})
	require.ErrorIs(t, err, ErrMissingIdentity)
}

// TestEncodeDismiss_Wildcard verifies the empty order id survives encoding.
func TestEncodeDismiss_Wildcard(t *testing.T) {
	t.Parallel()

	payload, err := EncodeDismiss("")
	require.NoError(t, err)

	event, err := Decode(payload, time.Now())
	require.NoError(t, err)
	require.Equal(t, KindDismiss, event.Kind)
	require.Empty(t, event.OrderID)
}
