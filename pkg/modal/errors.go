package modal

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDialog is returned for dialogs that were never registered.
	ErrUnknownDialog = errors.New("modal: unknown dialog")
	// ErrUnknownField is returned for fields the dialog does not declare.
	ErrUnknownField = errors.New("modal: unknown field")
	// ErrFieldKind is returned when an event does not fit the field, such as
	// selecting an image for a text field.
	ErrFieldKind = errors.New("modal: event does not match field kind")
	// ErrPreviewNotFound is returned when removing an unknown preview.
	ErrPreviewNotFound = errors.New("modal: preview not found")
	// ErrRecordNotFound is returned by OpenByID when the store has no record.
	ErrRecordNotFound = errors.New("modal: record not found")
	// ErrSaveInProgress is returned when a dialog is saved again while its
	// images are still being compressed.
	ErrSaveInProgress = errors.New("modal: save already in progress")
	// ErrDialogChanged is returned when a dialog was closed or reopened while
	// its save was compressing images.
	ErrDialogChanged = errors.New("modal: dialog changed during save")
)

// SaveError reports a store failure during save. The dialog stays open with
// its data intact.
type SaveError struct {
	DialogID string
	Op       string
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("modal: %s %s: %v", e.Op, e.DialogID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
