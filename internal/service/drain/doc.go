// Package drain implements the order-siren-drain tool, which consumes the
// pending decision slot and either delivers it to the configured consumer
// or prints it for manual handling.
package drain
