// Package codec parses raw delivery-channel payloads into typed events.
//
// Decoding is strict on identity (an incoming event without an order id is
// rejected) and tolerant of everything else: optional fields are defaulted
// and individually malformed line items are skipped rather than failing the
// whole payload.
package codec
