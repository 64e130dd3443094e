// Package daemon drives rebuilds: it consumes filesystem change events, state
// commands and periodic ticks on a single goroutine, decides per build
// definition whether a rebuild is due, and refreshes the window manager once per
// batch. Errors are counted against a budget; exhausting it stops the loop with
// ErrGivingUp.
package daemon
