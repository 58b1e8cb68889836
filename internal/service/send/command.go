package send

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oshokin/order-siren/internal/codec"
	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/domain/order"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/service/common"
)

// Options describes the announcement to publish.
type Options struct {
	// ConfigPath to the YAML settings file.
	ConfigPath string
	// OrderID identifies the order, required.
	OrderID string
	// CustomerName is the display name, optional.
	CustomerName string
	// TableNo is the table number, optional.
	TableNo string
	// Phone is the customer phone, optional.
	Phone string
	// Total is the order total, optional.
	Total string
	// ItemsCount is the number of line items, optional.
	ItemsCount string
	// ItemsJSON is the raw line items array in wire form, optional.
	ItemsJSON string
}

// Run publishes one incoming order event and returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "order-siren-send")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	alert, err := buildAlert(opts)
	if err != nil {
		return err
	}

	payload, err := codec.EncodeIncoming(alert)
	if err != nil {
		return fmt.Errorf("encode announcement: %w", err)
	}

	publisher, err := common.NewPublisher(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = publisher.Close() //nolint:errcheck // Best effort on exit.
	}()

	publishCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := publisher.Publish(publishCtx, payload); err != nil {
		return fmt.Errorf("publish announcement: %w", err)
	}

	logger.InfoKV(ctx, "Order announcement published",
		"order_id", alert.OrderID, "total", alert.Total)

	return nil
}

// buildAlert assembles the alert content from command options.
func buildAlert(opts *Options) (*order.Alert, error) {
	if opts.OrderID == "" {
		return nil, codec.ErrMissingIdentity
	}

	alert := &order.Alert{
		OrderID:      opts.OrderID,
		CustomerName: opts.CustomerName,
		TableNo:      opts.TableNo,
		Phone:        opts.Phone,
		Total:        opts.Total,
		ItemsCount:   opts.ItemsCount,
		IssuedAt:     time.Now(),
	}

	if opts.ItemsJSON != "" {
		items, err := parseItems(opts.ItemsJSON)
		if err != nil {
			return nil, err
		}

		alert.Items = items

		if alert.ItemsCount == "" {
			alert.ItemsCount = fmt.Sprintf("%d", len(items))
		}
	}

	return alert, nil
}

// wireItem mirrors one entry of the --items JSON array.
type wireItem struct {
	N  string `json:"n"`
	V  string `json:"v"`
	Q  string `json:"q"`
	P  string `json:"p"`
	T  string `json:"t"`
	Op string `json:"op"`
}

// parseItems decodes the --items flag value.
func parseItems(raw string) ([]order.LineItem, error) {
	var entries []wireItem
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}

	items := make([]order.LineItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, order.LineItem{
			ProductName:       entry.N,
			VariantName:       entry.V,
			Quantity:          entry.Q,
			UnitPrice:         entry.P,
			LineTotal:         entry.T,
			OriginalUnitPrice: entry.Op,
		})
	}

	return items, nil
}
