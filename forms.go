package formmodal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formmodal/pkg/schema"
)

// EmbeddedForms exposes the bundled form definitions so callers can copy or
// extend them without importing the schema package directly.
func EmbeddedForms() fs.FS {
	return schema.EmbeddedFS()
}

// LoadForms returns the bundled forms merged with the definitions found in
// dir: YAML/JSON form files, and OpenAPI documents (*.openapi.yaml) whose
// component schemas carry x-formmodal-dialog. Forms in dir replace bundled
// forms with the same id. An empty dir loads only the bundled set.
func LoadForms(ctx context.Context, dir string) (*schema.Store, error) {
	bundled, err := schema.Defaults()
	if err != nil {
		return nil, fmt.Errorf("formmodal: bundled forms: %w", err)
	}
	if strings.TrimSpace(dir) == "" {
		return bundled, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("formmodal: forms dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("formmodal: forms dir %s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	custom, err := schema.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	derived, err := schema.LoadOpenAPIFS(ctx, fsys)
	if err != nil {
		return nil, err
	}
	for _, form := range derived.Forms() {
		if existing, ok := custom.Form(form.ID); ok {
			return nil, fmt.Errorf("formmodal: form %q defined in both %s and %s", form.ID, existing.Source, form.Source)
		}
	}

	forms := append(bundled.Forms(), custom.Forms()...)
	return schema.NewStore(append(forms, derived.Forms()...)...), nil
}
