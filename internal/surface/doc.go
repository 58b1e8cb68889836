// Package surface renders the full-detail alert view and captures the
// operator's slide-to-decide gesture.
//
// A Surface holds no state of record: it is materialized at any time from
// the store's current alert and can be destroyed without losing anything.
// The gesture is an explicit state machine fed with synthetic offsets, so it
// is testable without a UI event loop. Each surface commits at most one
// decision; after that a processing latch ignores further input.
package surface
