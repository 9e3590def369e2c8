package schema

import (
	"sort"
	"strings"
)

// FieldKind enumerates the input kinds a dialog field can have.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindRichText FieldKind = "richtext"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindDate     FieldKind = "date"
	KindNumber   FieldKind = "number"
	KindEmail    FieldKind = "email"
	KindURL      FieldKind = "url"
	KindImage    FieldKind = "image"
)

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindTextArea, KindRichText, KindSelect, KindCheckbox,
		KindDate, KindNumber, KindEmail, KindURL, KindImage:
		return true
	default:
		return false
	}
}

// RuleSpec is the declarative form of a validation rule. Value carries the
// length threshold for minLength/maxLength and the expression for pattern.
type RuleSpec struct {
	Kind    string `json:"kind" yaml:"kind"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Field describes one input of a dialog. Dotted names ("seo.title") nest the
// extracted value inside the record.
type Field struct {
	Name     string            `json:"name" yaml:"name"`
	Kind     FieldKind         `json:"kind" yaml:"kind"`
	Label    string            `json:"label,omitempty" yaml:"label,omitempty"`
	Selector string            `json:"selector,omitempty" yaml:"selector,omitempty"`
	Widget   string            `json:"widget,omitempty" yaml:"widget,omitempty"`
	Options  []string          `json:"options,omitempty" yaml:"options,omitempty"`
	Rules    []RuleSpec        `json:"rules,omitempty" yaml:"rules,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// QuerySelector returns the selector used to locate the field's node. Fields
// without an explicit selector are matched by name.
func (f Field) QuerySelector() string {
	if selector := strings.TrimSpace(f.Selector); selector != "" {
		return selector
	}
	return "[name=" + f.Name + "]"
}

// DisplayLabel returns the label or the field name when no label is set.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// Required reports whether the field carries a required rule.
func (f Field) Required() bool {
	for _, rule := range f.Rules {
		if rule.Kind == "required" {
			return true
		}
	}
	return false
}

// Form is the definition of one dialog: its id (also the DOM scope of the
// modal), the record type tag handed to the store, and its ordered fields.
type Form struct {
	ID      string  `json:"id" yaml:"id"`
	TypeTag string  `json:"typeTag" yaml:"typeTag"`
	Title   string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields  []Field `json:"fields" yaml:"fields"`
	Source  string  `json:"-" yaml:"-"`
}

// Field looks up a field by name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldsOfKind returns fields of the requested kind in declaration order.
func (f Form) FieldsOfKind(kind FieldKind) []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.Kind == kind {
			out = append(out, field)
		}
	}
	return out
}

// RequiredCount returns how many fields carry a required rule.
func (f Form) RequiredCount() int {
	count := 0
	for _, field := range f.Fields {
		if field.Required() {
			count++
		}
	}
	return count
}

// FormRef is minimal metadata about an available form.
type FormRef struct {
	ID      string
	TypeTag string
	Title   string
	Fields  int
}

// Store holds parsed form definitions keyed by id.
type Store struct {
	forms map[string]Form
}

// NewStore builds a store from already-constructed forms. Later duplicates
// replace earlier ones.
func NewStore(forms ...Form) *Store {
	store := &Store{forms: make(map[string]Form, len(forms))}
	for _, form := range forms {
		store.forms[form.ID] = form
	}
	return store
}

// Form returns the definition for id.
func (s *Store) Form(id string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// Forms returns every definition sorted by id.
func (s *Store) Forms() []Form {
	if s == nil {
		return nil
	}
	out := make([]Form, 0, len(s.forms))
	for _, form := range s.forms {
		out = append(out, form)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FormRefs lists form metadata sorted by id.
func (s *Store) FormRefs() []FormRef {
	forms := s.Forms()
	refs := make([]FormRef, 0, len(forms))
	for _, form := range forms {
		refs = append(refs, FormRef{
			ID:      form.ID,
			TypeTag: form.TypeTag,
			Title:   form.Title,
			Fields:  len(form.Fields),
		})
	}
	return refs
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}
