// Package consumer adapts the business layer behind the relay's boundary.
//
// The Webhook implementation posts decisions and navigation requests to a
// configured base URL behind a circuit breaker. A tripped breaker makes the
// consumer report itself unreachable, which routes decisions to the pending
// slot instead of burning attempts against a dead endpoint.
package consumer
