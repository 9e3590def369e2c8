package dialog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStore_Lifecycle(t *testing.T) {
	opened := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(WithNow(func() time.Time { return opened }))

	record := map[string]any{"id": 7, "title": "Harbour Tower"}
	state, err := store.Open("project", ModeEdit, record)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := State{ID: "project", Mode: ModeEdit, Record: record, OpenedAt: opened, Session: 1}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	record["title"] = "mutated by caller"
	got, _ := store.Get("project")
	if got.Record["title"] != "Harbour Tower" {
		t.Fatalf("store must hold its own copy of the record")
	}

	if err := store.MarkDirty("project"); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	if got, _ := store.Get("project"); !got.Dirty {
		t.Fatalf("expected dirty")
	}
	if err := store.MarkClean("project"); err != nil {
		t.Fatalf("mark clean: %v", err)
	}
	if err := store.Close("project"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if store.IsOpen("project") {
		t.Fatalf("state must not exist after close")
	}
}

func TestStore_Errors(t *testing.T) {
	store := NewStore()
	if _, err := store.Open("project", ModeAdd, nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Open("project", ModeAdd, nil); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
	if err := store.MarkDirty("service"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if err := store.Close("service"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if _, err := store.Open("service", Mode("view"), nil); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestStore_OpenIDsSorted(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"testimonial", "blogPost", "project"} {
		if _, err := store.Open(id, ModeAdd, nil); err != nil {
			t.Fatalf("open %s: %v", id, err)
		}
	}
	if diff := cmp.Diff([]string{"blogPost", "project", "testimonial"}, store.OpenIDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SessionChangesOnReopen(t *testing.T) {
	opened := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(WithNow(func() time.Time { return opened }))

	first, err := store.Open("project", ModeAdd, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !store.Current("project", first.Session) {
		t.Fatalf("first session should be current")
	}
	if err := store.Close("project"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if store.Current("project", first.Session) {
		t.Fatalf("closed dialog has no current session")
	}

	second, err := store.Open("project", ModeAdd, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.Session == first.Session {
		t.Fatalf("reopen reused session %d despite identical OpenedAt", first.Session)
	}
	if store.Current("project", first.Session) || !store.Current("project", second.Session) {
		t.Fatalf("only the reopened session should be current")
	}
}
