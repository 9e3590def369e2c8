package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

// Forms loads the bundled form definitions or fails the test.
func Forms(t testing.TB) *schema.Store {
	t.Helper()

	forms, err := schema.Defaults()
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	return forms
}

// Form returns one bundled form by id.
func Form(t testing.TB, id string) schema.Form {
	t.Helper()

	form, ok := Forms(t).Form(id)
	if !ok {
		t.Fatalf("form %q not bundled", id)
	}
	return form
}

// PNG encodes a size x size image whose pixels vary with seed, so encoders
// cannot collapse it to a few bytes.
func PNG(t testing.TB, size, seed int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x*7 + seed),
				G: uint8(y*13 + seed),
				B: uint8(x*y + seed),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// ImageFile wraps PNG output in an imageintake.File named name.
func ImageFile(t testing.TB, name string, size, seed int) imageintake.File {
	t.Helper()
	return imageintake.NewFile(name, PNG(t, size, seed))
}

// WriteFile writes data under dir and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// LoadRecord reads a JSON record fixture, returning an error for callers
// managing setup outside of *testing.T.
func LoadRecord(path string) (record.Record, error) {
	if path == "" {
		return nil, errors.New("testsupport: record path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read record: %w", err)
	}
	var out record.Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal record: %w", err)
	}
	return out, nil
}

// MustLoadRecord loads a JSON record fixture or fails the test.
func MustLoadRecord(t testing.TB, path string) record.Record {
	t.Helper()

	rec, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	return rec
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true if the golden was written (test should exit early).
func WriteGolden(t testing.TB, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteFile(t, filepath.Dir(path), filepath.Base(path), append(payload, '\n'))
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
