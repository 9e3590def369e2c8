// Package debounce provides a keyed delayed-execution scheduler. Each key has
// at most one pending callback; rescheduling a key restarts its quiet period
// and prefix cancellation lets callers drop every timer owned by a dialog in
// one synchronous call.
package debounce
