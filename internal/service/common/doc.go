// Package common holds helpers shared by the order-siren tooling binaries,
// chiefly the outbound publisher that reaches the daemon's delivery channel.
package common
