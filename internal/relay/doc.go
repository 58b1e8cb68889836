// Package relay delivers captured decisions to the consuming business layer.
//
// When a consumer is reachable the decision is handed over directly as an
// asynchronous fire-and-forget call; otherwise it is parked as the single
// pending decision for the next consumer activation to drain. Draining has
// consume-once semantics: the slot is cleared atomically with the read. The
// relay guarantees at most one unconsumed pending item, not exactly-once
// delivery across a crash; consumers must treat duplicate decisions for the
// same order as idempotent.
package relay
