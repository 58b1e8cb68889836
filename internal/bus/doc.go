// Package bus abstracts cross-process signaling as generic message passing.
//
// Components publish and subscribe by topic and never assume a particular
// transport: the in-process implementation backs tests and single-binary
// deployments, the redis implementation carries the same topics between
// processes.
package bus
