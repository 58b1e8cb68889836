// Package config defines settings used by the order-siren binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type covers the bus transport, the optional Kafka ingest
// source, the consumer webhook, the feedback output and the slide gesture
// geometry.
package config
