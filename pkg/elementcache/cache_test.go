package elementcache

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/dom"
)

func TestGet_MemoisesLookups(t *testing.T) {
	tree := dom.NewTree()
	tree.AddScope("projectModal", dom.Input("project-title", "title", dom.TypeText))
	cache := New(tree)

	for i := 0; i < 5; i++ {
		if _, ok := cache.Get("projectModal", "title"); !ok {
			t.Fatalf("expected node")
		}
	}

	if got := tree.Queries(); got != 1 {
		t.Fatalf("expected a single document query, got %d", got)
	}
	want := Stats{Hits: 4, Misses: 1, Entries: 1}
	if diff := cmp.Diff(want, cache.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestClear_ScopedPrefix(t *testing.T) {
	tree := dom.NewTree()
	tree.AddScope("project", dom.Input("p-title", "title", dom.TypeText))
	tree.AddScope("project-archive", dom.Input("pa-title", "title", dom.TypeText))
	cache := New(tree)

	cache.Get("project", "title")
	cache.Get("project-archive", "title")

	if removed := cache.Clear(ScopePrefix("project")); removed != 1 {
		t.Fatalf("expected one eviction, got %d", removed)
	}
	if cache.Len(ScopePrefix("project-archive")) != 1 {
		t.Fatalf("sibling dialog entries must survive")
	}
}

func TestGet_RequeriesDetachedNode(t *testing.T) {
	tree := dom.NewTree()
	original := dom.NewNode(dom.TagDiv, map[string]string{"id": "d", "name": "description"})
	tree.AddScope("m", original)
	cache := New(tree)

	if got, _ := cache.Get("m", "description"); got != original {
		t.Fatalf("expected original node")
	}

	replacement := dom.TextArea("d", "description")
	if err := tree.Replace("m", original, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if got, _ := cache.Get("m", "description"); got != replacement {
		t.Fatalf("expected replacement after detach, got %v", got)
	}
}

func TestGet_MissDoesNotCache(t *testing.T) {
	tree := dom.NewTree()
	tree.AddScope("m")
	cache := New(tree)

	if _, ok := cache.Get("m", "missing"); ok {
		t.Fatalf("expected miss")
	}
	if cache.Len("") != 0 {
		t.Fatalf("misses must not be cached")
	}
}
