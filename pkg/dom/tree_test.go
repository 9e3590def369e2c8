package dom

import (
	"errors"
	"testing"
)

func TestQuery_Selectors(t *testing.T) {
	tree := NewTree()
	title := Input("project-title", "title", TypeText)
	save := NewNode(TagButton, map[string]string{"id": "project-save", "data-role": "save"})
	tree.AddScope("projectModal", title, save)

	cases := []struct {
		selector string
		want     *Node
	}{
		{"#project-title", title},
		{"title", title},
		{"[name=title]", title},
		{`[data-role="save"]`, save},
		{"[data-role]", save},
	}
	for _, tc := range cases {
		got, ok := tree.Query("projectModal", tc.selector)
		if !ok || got != tc.want {
			t.Fatalf("query %q: got %v (ok=%v)", tc.selector, got, ok)
		}
	}

	if _, ok := tree.Query("missingModal", "title"); ok {
		t.Fatalf("unknown scope should not resolve")
	}
	if tree.Queries() != int64(len(cases)+1) {
		t.Fatalf("unexpected query count %d", tree.Queries())
	}
}

func TestReplace_DetachesOldNode(t *testing.T) {
	tree := NewTree()
	editor := NewNode(TagDiv, map[string]string{"id": "project-description", "name": "description"})
	tree.AddScope("projectModal", editor)

	replacement := TextArea("project-description", "description")
	if err := tree.Replace("projectModal", editor, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if editor.Attached() {
		t.Fatalf("old node should be detached")
	}
	got, ok := tree.Query("projectModal", "description")
	if !ok || got != replacement || got.Tag() != TagTextArea {
		t.Fatalf("expected textarea replacement, got %v", got)
	}

	if err := tree.Replace("projectModal", editor, replacement); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestShowHideAndFocus(t *testing.T) {
	tree := NewTree()
	field := Input("a", "a", TypeText)
	tree.AddScope("m", field)

	if err := tree.Show("m"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !tree.Visible("m") {
		t.Fatalf("expected modal visible")
	}
	if err := tree.Hide("m"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if tree.Visible("m") {
		t.Fatalf("expected modal hidden")
	}
	if err := tree.Show("other"); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}

	tree.Focus(field)
	if !field.Focused() || tree.Focused() != field {
		t.Fatalf("expected field focused")
	}
}

func TestInvalidToggle(t *testing.T) {
	n := Input("x", "x", TypeText)
	n.SetInvalid("required")
	if msg, ok := n.Invalid(); !ok || msg != "required" || !n.HasClass(InvalidClass) {
		t.Fatalf("expected invalid state, got %q %v", msg, ok)
	}
	n.ClearInvalid()
	if _, ok := n.Invalid(); ok {
		t.Fatalf("expected invalid cleared")
	}
}

func TestAppendAndRemove(t *testing.T) {
	tree := NewTree()
	tree.AddScope("serviceModal")

	icon := Input("service-icon", "icon", TypeText)
	if err := tree.Append("serviceModal", icon); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !icon.Attached() {
		t.Fatalf("appended node should be attached")
	}
	if got, ok := tree.Query("serviceModal", "icon"); !ok || got != icon {
		t.Fatalf("appended node not queryable")
	}

	tree.Remove(icon)
	if icon.Attached() {
		t.Fatalf("removed node should be detached")
	}
	if _, ok := tree.Query("serviceModal", "icon"); ok {
		t.Fatalf("removed node still queryable")
	}
	if err := tree.Append("missingModal", icon); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}
