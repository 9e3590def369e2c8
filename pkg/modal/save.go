package modal

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formmodal/pkg/editor"
	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/schema"
	"github.com/goliatone/go-formmodal/pkg/validation"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Status is the result of a save attempt.
type Status string

const (
	StatusInvalid Status = "invalid"
	StatusSaved   Status = "saved"
	StatusFailed  Status = "failed"
)

// Outcome describes a save attempt.
type Outcome struct {
	Status      Status
	Validation  validation.Result
	Record      record.Record
	Created     bool
	Compression []imageintake.Outcome
}

// Save validates the whole dialog and, when valid, compresses new images,
// extracts the record and hands it to the store: create when the backing
// record has no id, update otherwise. A successful save closes the dialog.
//
// Invalid forms return StatusInvalid with a nil error, focus the first
// invalid field and leave the dialog untouched. Store failures return
// StatusFailed and a *SaveError; the dialog stays open with its data.
//
// Images are compressed without holding the orchestrator lock, so events on
// this and other dialogs keep flowing. The dialog is validated again once
// compression finishes, and the save is abandoned with ErrDialogChanged when
// the dialog was closed or reopened in the meantime.
func (o *Orchestrator) Save(ctx context.Context, dialogID string) (Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return Outcome{}, err
	}
	if o.saving[dialogID] {
		return Outcome{}, fmt.Errorf("%w: %s", ErrSaveInProgress, dialogID)
	}

	result := o.validateForSaveLocked(dialogID)
	if !result.IsValid {
		return Outcome{Status: StatusInvalid, Validation: result}, nil
	}

	var compression []imageintake.Outcome
	if pending := o.pendingImagesLocked(dialogID); len(pending) > 0 {
		state, _ := o.dialogs.Get(dialogID)
		o.saving[dialogID] = true
		o.mu.Unlock()
		compression, err = o.compress(ctx, pending)
		o.mu.Lock()
		delete(o.saving, dialogID)

		if err != nil {
			return Outcome{Status: StatusFailed, Validation: result}, fmt.Errorf("modal: compress %s: %w", dialogID, err)
		}
		if !o.dialogs.Current(dialogID, state.Session) {
			o.log.Warn("dialog changed while compressing, save abandoned", zap.String("dialog", dialogID))
			return Outcome{Status: StatusFailed, Validation: result, Compression: compression},
				fmt.Errorf("%w: %s", ErrDialogChanged, dialogID)
		}
		for i, entry := range pending {
			o.previews.Replace(entry.PreviewID, compression[i].File)
		}

		result = o.validateForSaveLocked(dialogID)
		if !result.IsValid {
			return Outcome{Status: StatusInvalid, Validation: result, Compression: compression}, nil
		}
	}

	data, err := o.formDataLocked(reg)
	if err != nil {
		return Outcome{Status: StatusFailed, Validation: result}, err
	}

	state, _ := o.dialogs.Get(dialogID)
	id, hasID := record.ID(state.Record)
	var (
		saved record.Record
		op    = "create"
	)
	if hasID {
		op = "update"
		if record.IsZeroID(id) {
			o.log.Warn("saving with zero-valued id as update",
				zap.String("dialog", dialogID),
				zap.Any("id", id))
		}
		saved, err = o.store.Update(ctx, reg.form.TypeTag, id, data)
	} else {
		saved, err = o.store.Create(ctx, reg.form.TypeTag, data)
	}
	if err != nil {
		o.log.Error("save failed", zap.String("dialog", dialogID), zap.String("op", op), zap.Error(err))
		o.notify(fmt.Sprintf("Could not save %s: %v", titleOf(reg), err), notify.LevelError)
		return Outcome{Status: StatusFailed, Validation: result, Compression: compression},
			&SaveError{DialogID: dialogID, Op: op, Err: err}
	}

	o.closeLocked(dialogID)
	verb := "created"
	if hasID {
		verb = "updated"
	}
	o.notify(fmt.Sprintf("%s %s", titleOf(reg), verb), notify.LevelSuccess)
	return Outcome{
		Status:      StatusSaved,
		Validation:  result,
		Record:      saved,
		Created:     !hasID,
		Compression: compression,
	}, nil
}

// FormData extracts the current values of an open dialog without saving.
func (o *Orchestrator) FormData(dialogID string) (record.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return nil, err
	}
	return o.formDataLocked(reg)
}

// Validate runs full validation of an open dialog and displays its errors.
func (o *Orchestrator) Validate(dialogID string) (validation.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.requireOpenLocked(dialogID); err != nil {
		return validation.Result{}, err
	}
	return o.validator.ValidateForm(dialogID), nil
}

// validateForSaveLocked runs full validation, toggles the save control and,
// when invalid, focuses the first invalid field and reports the error count.
func (o *Orchestrator) validateForSaveLocked(dialogID string) validation.Result {
	result := o.validator.ValidateForm(dialogID)
	if save, ok := o.cache.Get(dialogID, validation.SaveSelector); ok {
		save.SetDisabled(!result.IsValid)
	}
	if result.IsValid {
		return result
	}
	o.focusFirstInvalidLocked(dialogID, result)
	noun := "errors"
	if result.ErrorCount == 1 {
		noun = "error"
	}
	o.notify(fmt.Sprintf("Please fix %d %s before saving", result.ErrorCount, noun), notify.LevelError)
	return result
}

func (o *Orchestrator) focusFirstInvalidLocked(dialogID string, result validation.Result) {
	first, ok := result.First()
	if !ok {
		return
	}
	if node, found := o.validator.Node(dialogID, first.Field); found {
		o.doc.Focus(node)
	}
}

// pendingImagesLocked returns the newly selected images of a dialog. Images
// loaded from the backing record are never recompressed.
func (o *Orchestrator) pendingImagesLocked(dialogID string) []imageintake.Entry {
	var pending []imageintake.Entry
	for _, entry := range o.previews.Live(elementcache.ScopePrefix(dialogID)) {
		if !entry.Existing {
			pending = append(pending, entry)
		}
	}
	return pending
}

// compress shrinks every pending image concurrently. It runs without o.mu.
func (o *Orchestrator) compress(ctx context.Context, pending []imageintake.Entry) ([]imageintake.Outcome, error) {
	outcomes := make([]imageintake.Outcome, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range pending {
		i, entry := i, entry
		g.Go(func() error {
			outcomes[i] = <-o.compressor.CompressAsync(gctx, entry.Source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// formDataLocked builds the record for a dialog: plain values, sanitised
// rich text, image references, YYYY-MM-DD dates, numbers and booleans.
// Dotted field names nest.
func (o *Orchestrator) formDataLocked(reg registration) (record.Record, error) {
	dialogID := reg.form.ID
	data := record.Record{}
	for _, field := range reg.form.Fields {
		key := elementcache.Key(dialogID, field.Name)
		var value any

		switch reg.widget(field.Name) {
		case widgets.WidgetRichText:
			if content, ok := o.editors.Content(key); ok {
				value = content
			} else if node, found := o.nodeLocked(dialogID, field); found {
				value = editor.Sanitize(node.Value())
			} else {
				o.log.Warn("rich text field missing", zap.String("dialog", dialogID), zap.String("field", field.Name))
				continue
			}
		case widgets.WidgetImage:
			value = ""
			if owned := o.previews.Owned(key); len(owned) > 0 {
				value = owned[len(owned)-1].Reference()
			}
		default:
			node, found := o.nodeLocked(dialogID, field)
			if !found {
				o.log.Warn("field node missing during extraction", zap.String("dialog", dialogID), zap.String("field", field.Name))
				continue
			}
			value = o.fieldValue(reg, field.Name, node.Value(), node.Checked())
		}

		if err := setPath(data, field.Name, value); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (o *Orchestrator) fieldValue(reg registration, name, raw string, checked bool) any {
	field, _ := reg.form.Field(name)
	switch reg.widget(name) {
	case widgets.WidgetCheckbox:
		return checked
	case widgets.WidgetDatePicker:
		return normaliseDate(raw)
	}
	if field.Kind == schema.KindNumber {
		return parseNumber(raw)
	}
	return strings.TrimSpace(raw)
}

func titleOf(reg registration) string {
	if reg.form.Title != "" {
		return reg.form.Title
	}
	return reg.form.ID
}
