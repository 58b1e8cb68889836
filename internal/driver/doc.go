// Package driver owns the loud/vibrating feedback loop for the active alert.
//
// A Driver runs at most one concurrent feedback session, guarded by a single
// atomic flag that is mutated only through Start and Stop. The output channel
// is a scoped resource: its prior configuration is restored on every exit
// path, including failures during setup. Failure to acquire the channel
// degrades the alert to visual-only rather than aborting the cycle.
package driver
