// Package dialog tracks which dialogs are open, whether they are adding or
// editing a record, and whether the user has unsaved changes.
package dialog
