package codec

import (
	"encoding/json"
	"fmt"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// EncodeIncoming serializes an order announcement for the delivery channel.
func EncodeIncoming(alert *order.Alert) ([]byte, error) {
	if alert == nil || alert.OrderID == "" {
		return nil, ErrMissingIdentity
	}

	items := make([]wireItem, 0, len(alert.Items))
	for _, item := range alert.Items {
		items = append(items, wireItem{
			N:  item.ProductName,
			V:  item.VariantName,
			Q:  flexString(item.Quantity),
			P:  flexString(item.UnitPrice),
			T:  flexString(item.LineTotal),
			Op: flexString(item.OriginalUnitPrice),
		})
	}

	var rawItems json.RawMessage

	if len(items) > 0 {
		encoded, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode line items: %w", err)
		}

		rawItems = encoded
	}

	payload, err := json.Marshal(wireEvent{
		Type:       string(KindIncoming),
		OrderID:    flexString(alert.OrderID),
		Name:       alert.CustomerName,
		TableNo:    flexString(alert.TableNo),
		Phone:      flexString(alert.Phone),
		Total:      flexString(alert.Total),
		ItemsCount: flexString(alert.ItemsCount),
		Items:      rawItems,
	})
	if err != nil {
		return nil, fmt.Errorf("encode incoming event: %w", err)
	}

	return payload, nil
}

// EncodeDismiss serializes a dismiss event. An empty order id produces a
// wildcard dismiss that clears whatever alert is active.
func EncodeDismiss(orderID string) ([]byte, error) {
	payload, err := json.Marshal(wireEvent{
		Type:    string(KindDismiss),
		OrderID: flexString(orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("encode dismiss event: %w", err)
	}

	return payload, nil
}
