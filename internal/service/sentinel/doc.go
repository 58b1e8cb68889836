// Package sentinel runs the order-sirend daemon: it wires the alert state
// store, the alerting driver, the presentation surface, the decision relay
// and the delivery channel together and keeps them running until shutdown.
package sentinel
