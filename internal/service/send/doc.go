// Package send implements the order-siren-send tool, which publishes an
// incoming order announcement into the daemon's delivery channel.
package send
