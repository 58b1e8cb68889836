package order

import "time"

// Decision is the operator's accept/reject choice for an order.
type Decision string

const (
	// DecisionAccepted means the operator accepted the order.
	DecisionAccepted Decision = "accepted"
	// DecisionRejected means the operator rejected the order.
	DecisionRejected Decision = "rejected"
)

// Valid reports whether the decision holds one of the two known values.
func (d Decision) Valid() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

// Action returns the cross-process handoff form of the decision
// ("accept"/"reject"), as carried in the consumer key/value bag.
func (d Decision) Action() string {
	if d == DecisionAccepted {
		return "accept"
	}

	return "reject"
}

// LineItem is one priced line of an order.
type LineItem struct {
	// ProductName is the display name of the ordered product.
	ProductName string
	// VariantName is the product variant, empty when the product has none.
	VariantName string
	// Quantity is the ordered quantity, kept as a display string.
	Quantity string
	// UnitPrice is the price charged per unit.
	UnitPrice string
	// LineTotal is the total for this line.
	LineTotal string
	// OriginalUnitPrice is the pre-discount unit price.
	OriginalUnitPrice string
}

// Alert is one incoming order as presented to the operator.
// An Alert is immutable once constructed; a superseding alert for the same
// order replaces it wholesale rather than mutating fields in place.
type Alert struct {
	// OrderID identifies the order. It is the only required field.
	OrderID string
	// CustomerName is the ordering customer's display name.
	CustomerName string
	// TableNo is the table number, empty for non-dine-in orders.
	TableNo string
	// Phone is the customer's phone number.
	Phone string
	// Total is the order total, kept as a display string.
	Total string
	// ItemsCount is shown when Items is empty.
	ItemsCount string
	// Items is the ordered sequence of line items. May be empty.
	Items []LineItem
	// IssuedAt is assigned at receipt and used for ordering.
	IssuedAt time.Time
}

// Clone returns a deep copy of the alert.
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}

	cloned := *a

	if a.Items != nil {
		cloned.Items = make([]LineItem, len(a.Items))
		copy(cloned.Items, a.Items)
	}

	return &cloned
}

// PendingDecision is a captured decision held until exactly one successful
// delivery to a consumer.
type PendingDecision struct {
	// OrderID identifies the decided order.
	OrderID string `json:"order_id"`
	// Decision is the captured accept/reject choice.
	Decision Decision `json:"decision"`
	// CapturedAt is when the operator committed the decision.
	CapturedAt time.Time `json:"captured_at"`
}

// Clone returns a copy of the pending decision and handles nil safely.
func (p *PendingDecision) Clone() *PendingDecision {
	if p == nil {
		return nil
	}

	cloned := *p

	return &cloned
}
