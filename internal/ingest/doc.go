// Package ingest feeds order events from Kafka into the event receiver.
//
// The reader uses at-least-once settings; duplicate deliveries are expected
// and the receiver drops them.
package ingest
