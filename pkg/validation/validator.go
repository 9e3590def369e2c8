package validation

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/rules"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

// SaveSelector locates the save control inside a dialog.
const SaveSelector = "[data-role=save]"

// FieldError is the first failing rule of one field.
type FieldError struct {
	Field   string       `json:"field"`
	Message string       `json:"message"`
	Failed  []rules.Kind `json:"failed,omitempty"`
}

// Result is the outcome of a full form pass. ErrorCount counts every failing
// rule across every field, so it can exceed len(Errors).
type Result struct {
	IsValid    bool         `json:"isValid"`
	Errors     []FieldError `json:"errors,omitempty"`
	ErrorCount int          `json:"errorCount"`
}

// First returns the first field error in field order.
func (r Result) First() (FieldError, bool) {
	if len(r.Errors) == 0 {
		return FieldError{}, false
	}
	return r.Errors[0], true
}

// TextSource exposes the value of fields that do not keep it in their node,
// such as rich-text widgets or image previews. The key is
// elementcache.Key(dialogID, field). ok is false when the source does not
// back the key, in which case the node value is read instead.
type TextSource interface {
	PlainText(key string) (text string, ok bool)
}

// Option customises a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for skipped-field warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.log = logger
		}
	}
}

// WithTextSource wires the provider of widget-backed field values.
func WithTextSource(source TextSource) Option {
	return func(v *Validator) {
		v.text = source
	}
}

type fieldLayout struct {
	selector string
	checkbox bool
}

// Validator evaluates registered rules against live node values. It only
// toggles error display on nodes and never writes record data.
type Validator struct {
	registry *rules.Registry
	cache    *elementcache.Cache
	text     TextSource
	log      *zap.Logger

	mu      sync.RWMutex
	layouts map[string]map[string]fieldLayout
}

// New constructs a validator reading rules from registry and nodes through
// cache.
func New(registry *rules.Registry, cache *elementcache.Cache, options ...Option) *Validator {
	v := &Validator{
		registry: registry,
		cache:    cache,
		log:      zap.NewNop(),
		layouts:  make(map[string]map[string]fieldLayout),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	v.log = v.log.Named("validation")
	return v
}

// Bind records how the fields of form are located. Fields not bound resolve
// through the default "[name=field]" selector.
func (v *Validator) Bind(form schema.Form) {
	layout := make(map[string]fieldLayout, len(form.Fields))
	for _, field := range form.Fields {
		layout[field.Name] = fieldLayout{
			selector: field.QuerySelector(),
			checkbox: field.Kind == schema.KindCheckbox,
		}
	}
	v.mu.Lock()
	v.layouts[form.ID] = layout
	v.mu.Unlock()
}

// ValidateForm evaluates every field of dialogID that carries rules and
// displays the first error of each invalid field. Missing nodes are skipped
// with a warning.
func (v *Validator) ValidateForm(dialogID string) Result {
	return v.validateForm(dialogID, true)
}

// Check evaluates the form like ValidateForm without touching error display.
func (v *Validator) Check(dialogID string) Result {
	return v.validateForm(dialogID, false)
}

func (v *Validator) validateForm(dialogID string, display bool) Result {
	result := Result{IsValid: true}
	for _, field := range v.registry.Fields(dialogID) {
		fieldErr, failures, ok := v.check(dialogID, field, display)
		if !ok || failures == 0 {
			continue
		}
		result.ErrorCount += failures
		result.Errors = append(result.Errors, fieldErr)
	}
	result.IsValid = result.ErrorCount == 0
	return result
}

// ValidateField evaluates one field and returns its error when invalid.
func (v *Validator) ValidateField(dialogID, field string) (FieldError, bool) {
	fieldErr, failures, ok := v.check(dialogID, field, true)
	if !ok || failures == 0 {
		return FieldError{}, false
	}
	return fieldErr, true
}

// UpdateSaveControl reruns full validation and disables the save control
// while the form is invalid. Error display of other fields is left alone.
func (v *Validator) UpdateSaveControl(dialogID string) Result {
	result := v.Check(dialogID)
	if node, ok := v.cache.Get(dialogID, SaveSelector); ok {
		node.SetDisabled(!result.IsValid)
	}
	return result
}

// Node resolves the node backing a field.
func (v *Validator) Node(dialogID, field string) (*dom.Node, bool) {
	return v.cache.Get(dialogID, v.layout(dialogID, field).selector)
}

// ClearErrors removes error display from every field of dialogID.
func (v *Validator) ClearErrors(dialogID string) {
	for _, field := range v.registry.Fields(dialogID) {
		if node, ok := v.Node(dialogID, field); ok {
			node.ClearInvalid()
		}
	}
}

func (v *Validator) check(dialogID, field string, display bool) (FieldError, int, bool) {
	list := v.registry.Rules(dialogID, field)
	if len(list) == 0 {
		return FieldError{}, 0, false
	}
	node, ok := v.Node(dialogID, field)
	if !ok {
		v.log.Warn("field node not found, skipping",
			zap.String("dialog", dialogID),
			zap.String("field", field))
		return FieldError{}, 0, false
	}

	failed := rules.Failures(list, v.value(dialogID, field, node))
	if len(failed) == 0 {
		if display {
			node.ClearInvalid()
		}
		return FieldError{}, 0, true
	}

	kinds := make([]rules.Kind, 0, len(failed))
	for _, rule := range failed {
		kinds = append(kinds, rule.Kind)
	}
	fieldErr := FieldError{Field: field, Message: failed[0].Message, Failed: kinds}
	if display {
		node.SetInvalid(fieldErr.Message)
	}
	return fieldErr, len(failed), true
}

func (v *Validator) value(dialogID, field string, node *dom.Node) rules.Value {
	if v.text != nil {
		if text, ok := v.text.PlainText(elementcache.Key(dialogID, field)); ok {
			return rules.Text(text)
		}
	}
	if v.layout(dialogID, field).checkbox || strings.EqualFold(node.Type(), dom.TypeCheckbox) {
		return rules.Checkbox(node.Checked())
	}
	return rules.Text(node.Value())
}

func (v *Validator) layout(dialogID, field string) fieldLayout {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if fields, ok := v.layouts[dialogID]; ok {
		if layout, ok := fields[field]; ok {
			return layout
		}
	}
	return fieldLayout{selector: "[name=" + field + "]"}
}
