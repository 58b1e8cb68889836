// Package receiver is the entry point for delivery-channel events.
//
// It classifies and deduplicates events, drives the alert state store, the
// alerting driver and the presentation surface, and routes captured
// decisions to the relay. It is safe to invoke concurrently with itself and
// with a decision being captured on the surface; every race resolves at the
// store's generation check, and a dismiss always wins.
package receiver
