package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/testsupport"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDialogsCommand(t *testing.T) {
	out, _, err := run(t, "dialogs")
	if err != nil {
		t.Fatalf("dialogs: %v", err)
	}
	for _, want := range []string{"ID", "REQUIRED", "blogPost", "testimonials", "Team member"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	data := testsupport.WriteFile(t, dir, "testimonial.yaml", []byte("clientName: \"\"\ntestimonialText: short\n"))

	out, _, err := run(t, "validate", "testimonial", "--data", data)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, want := range []string{"testimonial has 2 errors", "clientName: Client name is required", "testimonialText: Testimonial must be at least 20 characters"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, _, err = run(t, "validate", "project",
		"--set", "title=Harbour Tower",
		"--set", "status=active",
		"--set", "description=<p>A mixed-use tower on the waterfront.</p>",
	)
	if err != nil {
		t.Fatalf("validate project: %v\n%s", err, out)
	}
	if !strings.Contains(out, "project is valid") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSaveCommandWritesSQLite(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "content.db")

	out, stderr, err := run(t, "save", "service", "--dsn", dsn,
		"--set", "name=Site audit",
		"--set", "summary=<p>Full technical review</p>",
		"--set", "active=true",
	)
	if err != nil {
		t.Fatalf("save: %v\n%s", err, stderr)
	}
	if !strings.Contains(out, "created id=") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(stderr, "[success] Service created") {
		t.Fatalf("expected success notification, got:\n%s", stderr)
	}

	ctx := testsupport.Context()
	store, err := record.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	records, err := store.List(ctx, "services")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "Site audit" || records[0]["active"] != true {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestSaveCommandInvalidDiscards(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "content.db")
	out, _, err := run(t, "save", "project", "--dsn", dsn, "--yes", "--set", "title=Ab")
	if err == nil || !strings.Contains(err.Error(), "project was not saved") {
		t.Fatalf("expected save refusal, got %v", err)
	}
	if !strings.Contains(out, "title: Title must be at least 3 characters") {
		t.Fatalf("expected field error, got:\n%s", out)
	}
	if strings.Contains(out, "edits kept") {
		t.Fatalf("--yes should discard the edits:\n%s", out)
	}
}

func TestCompressCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	img := testsupport.WriteFile(t, dir, "photo.png", testsupport.PNG(t, 64, 0))
	txt := testsupport.WriteFile(t, dir, "notes.txt", bytes.Repeat([]byte("not an image "), 20))

	out, _, err := run(t, "compress", img, txt, "--out", outDir, "--target", "1B")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 images rejected") {
		t.Fatalf("expected one rejection, got %v", err)
	}
	if !strings.Contains(out, "notes.txt: rejected") || !strings.Contains(out, "wrote ") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one written file, got %v (%v)", entries, err)
	}
}
