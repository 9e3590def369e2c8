package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML form definition
// files. When fsys is nil or holds no definitions, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for formID, raw := range doc.Forms {
			id := strings.TrimSpace(formID)
			if id == "" {
				return fmt.Errorf("schema: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("schema: duplicate form %q (file %s)", id, path)
			}
			form, err := normaliseForm(raw, id, path)
			if err != nil {
				return err
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

// Parse decodes a single definition document.
func Parse(data []byte, source string) (*Store, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	store := &Store{forms: make(map[string]Form, len(doc.Forms))}
	for formID, raw := range doc.Forms {
		id := strings.TrimSpace(formID)
		if id == "" {
			return nil, fmt.Errorf("schema: file %s defines an empty form id", source)
		}
		form, err := normaliseForm(raw, id, source)
		if err != nil {
			return nil, err
		}
		store.forms[id] = form
	}
	return store, nil
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	TypeTag string  `json:"typeTag" yaml:"typeTag"`
	Title   string  `json:"title" yaml:"title"`
	Fields  []Field `json:"fields" yaml:"fields"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(raw formFile, id, source string) (Form, error) {
	form := Form{
		ID:      id,
		TypeTag: strings.TrimSpace(raw.TypeTag),
		Title:   strings.TrimSpace(raw.Title),
		Source:  source,
	}
	if form.TypeTag == "" {
		form.TypeTag = id
	}

	seen := make(map[string]struct{}, len(raw.Fields))
	for idx, field := range raw.Fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return Form{}, fmt.Errorf("schema: form %q (file %s) field #%d has no name", id, source, idx)
		}
		if _, exists := seen[field.Name]; exists {
			return Form{}, fmt.Errorf("schema: form %q (file %s) defines duplicate field %q", id, source, field.Name)
		}
		seen[field.Name] = struct{}{}

		if field.Kind == "" {
			field.Kind = KindText
		}
		field.Kind = FieldKind(strings.ToLower(string(field.Kind)))
		if !field.Kind.Valid() {
			return Form{}, fmt.Errorf("schema: form %q (file %s) field %q has unknown kind %q", id, source, field.Name, field.Kind)
		}
		field.Rules = append([]RuleSpec(nil), field.Rules...)
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func isDefinitionFile(path string) bool {
	if IsOpenAPIFile(path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
