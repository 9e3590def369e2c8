// Package validation evaluates the rules registered for a dialog against the
// values currently held by its nodes and toggles error display. The Trigger
// state machine decides when a field event should validate: blur validates
// immediately, later input is debounced.
package validation
