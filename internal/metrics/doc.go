// Package metrics exposes Prometheus counters for the alert flow.
//
// Counters are registered on the default registry; the daemon serves them
// via promhttp on the configured metrics address.
package metrics
