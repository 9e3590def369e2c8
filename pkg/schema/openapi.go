package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	extensionKind   = "x-formmodal-kind"
	extensionLabel  = "x-formmodal-label"
	extensionOrder  = "x-formmodal-order"
	extensionDialog = "x-formmodal-dialog"
	extensionType   = "x-formmodal-type"
)

// OpenAPIOptions controls FromOpenAPI.
type OpenAPIOptions struct {
	// DialogID is the resulting form id. Defaults to the component name.
	DialogID string
	// TypeTag is handed to the record store. Defaults to DialogID.
	TypeTag string
}

// FromOpenAPI derives a form definition from a component schema of an
// OpenAPI 3 document. Property constraints map onto rules: required,
// minLength/maxLength, pattern, and the email/uri formats. The kind comes from
// the x-formmodal-kind extension when present, otherwise from type/format.
func FromOpenAPI(ctx context.Context, raw []byte, component string, opts OpenAPIOptions) (Form, error) {
	doc, err := loadOpenAPI(ctx, raw)
	if err != nil {
		return Form{}, err
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return Form{}, fmt.Errorf("schema: component %q not found", component)
	}
	return formFromComponent(component, ref.Value, opts, "openapi#/components/schemas/"+component)
}

// IsOpenAPIFile reports whether path names an OpenAPI document, such as
// content.openapi.yaml. LoadFS skips these files.
func IsOpenAPIFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".openapi.yaml", ".openapi.yml", ".openapi.json"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// LoadOpenAPIFS derives forms from every OpenAPI document in fsys. Only
// component schemas carrying x-formmodal-dialog become forms; the extension
// value is the dialog id and x-formmodal-type optionally sets the type tag.
// Duplicate dialog ids are errors.
func LoadOpenAPIFS(ctx context.Context, fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsOpenAPIFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := loadOpenAPI(ctx, data)
		if err != nil {
			return fmt.Errorf("%w (file %s)", err, path)
		}

		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			id, ok := ref.Value.Extensions[extensionDialog].(string)
			if !ok || strings.TrimSpace(id) == "" {
				continue
			}
			id = strings.TrimSpace(id)
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("schema: duplicate form %q (file %s)", id, path)
			}
			typeTag, _ := ref.Value.Extensions[extensionType].(string)
			form, err := formFromComponent(name, ref.Value, OpenAPIOptions{DialogID: id, TypeTag: typeTag},
				path+"#/components/schemas/"+name)
			if err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
			store.forms[id] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func loadOpenAPI(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, fmt.Errorf("schema: openapi document has no component schemas")
	}
	return doc, nil
}

func formFromComponent(component string, root *openapi3.Schema, opts OpenAPIOptions, source string) (Form, error) {
	id := strings.TrimSpace(opts.DialogID)
	if id == "" {
		id = component
	}
	typeTag := strings.TrimSpace(opts.TypeTag)
	if typeTag == "" {
		typeTag = id
	}

	form := Form{
		ID:      id,
		TypeTag: typeTag,
		Title:   root.Title,
		Source:  source,
	}

	required := make(map[string]struct{}, len(root.Required))
	for _, name := range root.Required {
		required[name] = struct{}{}
	}

	for _, name := range propertyOrder(root) {
		propRef := root.Properties[name]
		if propRef == nil || propRef.Value == nil || propRef.Value.ReadOnly {
			continue
		}
		_, isRequired := required[name]
		form.Fields = append(form.Fields, fieldFromSchema(name, propRef.Value, isRequired))
	}

	if len(form.Fields) == 0 {
		return Form{}, fmt.Errorf("schema: component %q has no writable properties", component)
	}
	return form, nil
}

// propertyOrder honours x-formmodal-order on the component, then appends the
// remaining properties alphabetically.
func propertyOrder(s *openapi3.Schema) []string {
	seen := make(map[string]struct{}, len(s.Properties))
	var ordered []string
	if raw, ok := s.Extensions[extensionOrder].([]any); ok {
		for _, item := range raw {
			name, ok := item.(string)
			if !ok {
				continue
			}
			if _, exists := s.Properties[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			ordered = append(ordered, name)
		}
	}

	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func fieldFromSchema(name string, s *openapi3.Schema, required bool) Field {
	field := Field{
		Name:  name,
		Kind:  kindFromSchema(s),
		Label: s.Title,
	}
	if label, ok := s.Extensions[extensionLabel].(string); ok && strings.TrimSpace(label) != "" {
		field.Label = strings.TrimSpace(label)
	}
	for _, value := range s.Enum {
		if str, ok := value.(string); ok {
			field.Options = append(field.Options, str)
		}
	}

	if required {
		field.Rules = append(field.Rules, RuleSpec{Kind: "required"})
	}
	if s.MinLength > 0 {
		field.Rules = append(field.Rules, RuleSpec{Kind: "minLength", Value: int(s.MinLength)})
	}
	if s.MaxLength != nil {
		field.Rules = append(field.Rules, RuleSpec{Kind: "maxLength", Value: int(*s.MaxLength)})
	}
	if s.Pattern != "" {
		field.Rules = append(field.Rules, RuleSpec{Kind: "pattern", Value: s.Pattern})
	}
	switch strings.ToLower(s.Format) {
	case "email":
		field.Rules = append(field.Rules, RuleSpec{Kind: "email"})
	case "uri", "url":
		field.Rules = append(field.Rules, RuleSpec{Kind: "url"})
	}
	return field
}

func kindFromSchema(s *openapi3.Schema) FieldKind {
	if raw, ok := s.Extensions[extensionKind].(string); ok {
		if kind := FieldKind(strings.ToLower(strings.TrimSpace(raw))); kind.Valid() {
			return kind
		}
	}

	switch {
	case s.Type != nil && s.Type.Is("boolean"):
		return KindCheckbox
	case s.Type != nil && (s.Type.Is("integer") || s.Type.Is("number")):
		return KindNumber
	case len(s.Enum) > 0:
		return KindSelect
	}

	switch strings.ToLower(s.Format) {
	case "date", "date-time":
		return KindDate
	case "email":
		return KindEmail
	case "uri", "url":
		return KindURL
	case "html":
		return KindRichText
	case "binary", "byte":
		return KindImage
	case "textarea":
		return KindTextArea
	}
	return KindText
}
