// Package dismiss implements the order-siren-dismiss tool, which cancels
// the active alert through the daemon's delivery channel.
package dismiss
