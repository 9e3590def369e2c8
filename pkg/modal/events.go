package modal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/validation"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// FieldStatus is the result of validating one field after an event.
type FieldStatus struct {
	Field     string
	Validated bool
	Valid     bool
	Message   string
	FormValid bool
}

// Input records a value typed into a text-like field. Fields that have not
// been blurred yet are not validated; touched fields validate after the
// debounce period.
func (o *Orchestrator) Input(dialogID, name, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return err
	}
	field, err := o.fieldLocked(reg, name)
	if err != nil {
		return err
	}
	switch reg.widget(name) {
	case widgets.WidgetRichText:
		return o.editContentLocked(dialogID, name, value)
	case widgets.WidgetCheckbox, widgets.WidgetImage:
		return fmt.Errorf("%w: input on %s field %s", ErrFieldKind, reg.widget(name), name)
	}
	node, ok := o.nodeLocked(dialogID, field)
	if !ok {
		return fmt.Errorf("%w: node for %s.%s", ErrUnknownField, dialogID, name)
	}
	node.SetValue(value)
	o.touchLocked(dialogID)
	o.inputLocked(dialogID, name)
	return nil
}

// EditContent replaces the markup of a rich-text field.
func (o *Orchestrator) EditContent(dialogID, name, markup string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return err
	}
	if _, err := o.fieldLocked(reg, name); err != nil {
		return err
	}
	if reg.widget(name) != widgets.WidgetRichText {
		return fmt.Errorf("%w: %s is not rich text", ErrFieldKind, name)
	}
	return o.editContentLocked(dialogID, name, markup)
}

func (o *Orchestrator) editContentLocked(dialogID, name, markup string) error {
	key := elementcache.Key(dialogID, name)
	if !o.editors.SetContent(key, markup) {
		return fmt.Errorf("%w: no editor for %s", ErrUnknownField, key)
	}
	o.touchLocked(dialogID)
	o.inputLocked(dialogID, name)
	return nil
}

// SetChecked toggles a checkbox. A change validates immediately.
func (o *Orchestrator) SetChecked(dialogID, name string, checked bool) (FieldStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return FieldStatus{}, err
	}
	field, err := o.fieldLocked(reg, name)
	if err != nil {
		return FieldStatus{}, err
	}
	if reg.widget(name) != widgets.WidgetCheckbox {
		return FieldStatus{}, fmt.Errorf("%w: %s is not a checkbox", ErrFieldKind, name)
	}
	node, ok := o.nodeLocked(dialogID, field)
	if !ok {
		return FieldStatus{}, fmt.Errorf("%w: node for %s.%s", ErrUnknownField, dialogID, name)
	}
	node.SetChecked(checked)
	o.touchLocked(dialogID)
	return o.blurLocked(dialogID, name), nil
}

// Blur validates a field immediately and supersedes any pending debounced
// validation of the same field.
func (o *Orchestrator) Blur(dialogID, name string) (FieldStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return FieldStatus{}, err
	}
	if _, err := o.fieldLocked(reg, name); err != nil {
		return FieldStatus{}, err
	}
	return o.blurLocked(dialogID, name), nil
}

func (o *Orchestrator) blurLocked(dialogID, name string) FieldStatus {
	key := elementcache.Key(dialogID, name)
	o.scheduler.Cancel(key)
	o.trigger.Blur(key)
	return o.validateFieldLocked(dialogID, name)
}

func (o *Orchestrator) inputLocked(dialogID, name string) {
	key := elementcache.Key(dialogID, name)
	if o.trigger.Input(key) != validation.ActionSchedule {
		return
	}
	state, ok := o.dialogs.Get(dialogID)
	if !ok {
		return
	}
	o.scheduler.Schedule(key, func() {
		o.debounced(dialogID, name, state.Session)
	}, o.wait)
}

// debounced runs on the timer goroutine. A timer that fired just before its
// dialog closed does nothing, even when the dialog was reopened since.
func (o *Orchestrator) debounced(dialogID, name string, session uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.dialogs.Current(dialogID, session) {
		return
	}
	o.validateFieldLocked(dialogID, name)
}

func (o *Orchestrator) validateFieldLocked(dialogID, name string) FieldStatus {
	fieldErr, invalid := o.validator.ValidateField(dialogID, name)
	form := o.validator.UpdateSaveControl(dialogID)
	return FieldStatus{
		Field:     name,
		Validated: true,
		Valid:     !invalid,
		Message:   fieldErr.Message,
		FormValid: form.IsValid,
	}
}

func (o *Orchestrator) touchLocked(dialogID string) {
	if err := o.dialogs.MarkDirty(dialogID); err != nil {
		o.log.Warn("mark dirty failed", zap.String("dialog", dialogID), zap.Error(err))
	}
}

// SelectImage validates file and shows it as the preview of an image field,
// replacing and revoking any previous preview. Rejected files are reported
// through an error notification and leave the field empty.
func (o *Orchestrator) SelectImage(ctx context.Context, dialogID, name string, file imageintake.File) (imageintake.Entry, error) {
	if err := ctx.Err(); err != nil {
		return imageintake.Entry{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectImageLocked(dialogID, name, file)
}

func (o *Orchestrator) selectImageLocked(dialogID, name string, file imageintake.File) (imageintake.Entry, error) {
	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return imageintake.Entry{}, err
	}
	field, err := o.fieldLocked(reg, name)
	if err != nil {
		return imageintake.Entry{}, err
	}
	if reg.widget(name) != widgets.WidgetImage {
		return imageintake.Entry{}, fmt.Errorf("%w: %s is not an image field", ErrFieldKind, name)
	}
	node, hasNode := o.nodeLocked(dialogID, field)

	if err := imageintake.Validate(file, o.limits); err != nil {
		if hasNode {
			node.SetValue("")
		}
		o.notify(err.Error(), notify.LevelError)
		return imageintake.Entry{}, err
	}

	key := elementcache.Key(dialogID, name)
	o.previews.Clear(key)
	entry := o.previews.Add(key, file)
	if hasNode {
		node.SetValue(file.Name)
		node.ClearInvalid()
	}
	o.touchLocked(dialogID)
	return entry, nil
}

// DropImages handles files dropped on an image field. The first acceptable
// file becomes the preview; every rejected file is reported.
func (o *Orchestrator) DropImages(ctx context.Context, dialogID, name string, files []imageintake.File) (imageintake.Entry, error) {
	if err := ctx.Err(); err != nil {
		return imageintake.Entry{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	var rejected []error
	for _, file := range files {
		entry, err := o.selectImageLocked(dialogID, name, file)
		if err == nil {
			return entry, nil
		}
		var rej *imageintake.RejectedError
		if !errors.As(err, &rej) {
			return imageintake.Entry{}, err
		}
		rejected = append(rejected, err)
	}
	if len(rejected) == 0 {
		return imageintake.Entry{}, fmt.Errorf("modal: no files dropped on %s.%s", dialogID, name)
	}
	return imageintake.Entry{}, errors.Join(rejected...)
}

// RemovePreview drops a preview, revokes its URL and clears the owning
// field's file input.
func (o *Orchestrator) RemovePreview(dialogID, previewID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, err := o.requireOpenLocked(dialogID)
	if err != nil {
		return err
	}
	prefix := elementcache.ScopePrefix(dialogID)
	var owner string
	for _, entry := range o.previews.Live(prefix) {
		if entry.PreviewID == previewID {
			owner = entry.Owner
			break
		}
	}
	if owner == "" {
		return fmt.Errorf("%w: %s", ErrPreviewNotFound, previewID)
	}
	o.previews.Remove(previewID)

	if field, ok := reg.form.Field(strings.TrimPrefix(owner, prefix)); ok {
		if node, found := o.nodeLocked(dialogID, field); found {
			node.SetValue("")
		}
	}
	o.touchLocked(dialogID)
	return nil
}
