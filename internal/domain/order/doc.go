// Package order contains core domain types for the incoming-order alert
// business logic.
//
// It defines Alert (one incoming order as shown to the operator), LineItem,
// Decision (the operator's accept/reject choice) and PendingDecision (a
// captured decision not yet delivered to a live consumer) with Clone helpers
// to avoid leaking internal references.
package order
