package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/notify"
)

func hostTree() (*dom.Tree, *dom.Node) {
	tree := dom.NewTree()
	host := dom.NewNode(dom.TagDiv, map[string]string{"id": "project-description", "name": "description"})
	tree.AddScope("project", host)
	return tree, host
}

func TestAcquire_ReusesClearedHandle(t *testing.T) {
	tree, host := hostTree()
	m := NewManager(tree)

	first, err := m.Acquire("project::description", "project", host, Options{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	m.SetContent("project::description", "<p>Old content</p>")
	m.Release("project::description")

	second, err := m.Acquire("project::description", "project", host, Options{})
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if first != second {
		t.Fatalf("expected the pooled handle to be reused")
	}
	if content, _ := m.Content("project::description"); content != "" {
		t.Fatalf("reused handle must be empty, got %q", content)
	}
	want := Stats{Created: 1, Reused: 1, Live: 1}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAcquire_RebuildsDeadHandle(t *testing.T) {
	tree, host := hostTree()
	var built []*MemoryWidget
	factory := func(id string, _ Options) (Widget, error) {
		w := NewMemoryWidget(id)
		built = append(built, w)
		return w, nil
	}
	m := NewManager(tree, WithFactory(factory))

	if _, err := m.Acquire("project::description", "project", host, Options{}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	built[0].Destroy()
	if _, err := m.Acquire("project::description", "project", host, Options{}); err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("dead handle should be rebuilt, factory ran %d times", len(built))
	}
}

func TestAcquire_FallbackToTextarea(t *testing.T) {
	tree, host := hostTree()
	recorder := &notify.Recorder{}
	m := NewManager(tree, WithFactory(Unavailable), WithNotifier(recorder))

	handle, err := m.Acquire("project::description", "project", host, Options{Placeholder: "Describe the project"})
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}
	if handle.Kind != KindFallback {
		t.Fatalf("expected fallback handle, got %s", handle.Kind)
	}
	if host.Attached() {
		t.Fatalf("original host should be detached")
	}
	replacement, ok := tree.Query("project", "[name=description]")
	if !ok || replacement.Tag() != dom.TagTextArea {
		t.Fatalf("expected textarea replacement, got %+v", replacement)
	}
	if replacement.Attr("placeholder") != "Describe the project" {
		t.Fatalf("placeholder not carried to fallback")
	}
	if got := recorder.ByLevel(notify.LevelWarning); len(got) != 1 {
		t.Fatalf("expected one warning notification, got %v", recorder.All())
	}

	m.SetContent("project::description", "<p>Plain <em>enough</em></p>")
	text, ok := m.PlainText("project::description")
	if !ok || text != "Plain enough" {
		t.Fatalf("fallback plain text: got %q %v", text, ok)
	}
	if m.Stats().Fallbacks != 1 {
		t.Fatalf("fallback not counted")
	}
}

func TestAcquire_MissingNode(t *testing.T) {
	tree, _ := hostTree()
	m := NewManager(tree)
	if _, err := m.Acquire("project::description", "project", nil, Options{}); !errors.Is(err, ErrNoElement) {
		t.Fatalf("expected ErrNoElement, got %v", err)
	}
}

func TestReleaseScope_IsolatesDialogs(t *testing.T) {
	tree := dom.NewTree()
	a := dom.NewNode(dom.TagDiv, map[string]string{"id": "a", "name": "description"})
	b := dom.NewNode(dom.TagDiv, map[string]string{"id": "b", "name": "description"})
	tree.AddScope("project", a)
	tree.AddScope("project-archive", b)
	m := NewManager(tree)

	m.Acquire("project::description", "project", a, Options{})
	m.Acquire("project-archive::description", "project-archive", b, Options{})
	m.SetContent("project::description", "<p>one</p>")
	m.SetContent("project-archive::description", "<p>two</p>")

	if n := m.ReleaseScope("project::"); n != 1 {
		t.Fatalf("expected one release, got %d", n)
	}
	if content, _ := m.Content("project-archive::description"); content != "<p>two</p>" {
		t.Fatalf("sibling dialog content lost: %q", content)
	}
}

func TestSanitize_Allowlist(t *testing.T) {
	raw := `<h2>Title</h2><p onclick="x()">Hi <script>alert(1)</script><strong>bold</strong> ` +
		`<a href="javascript:alert(1)">bad</a> <a href="https://example.com">good</a></p><img src="x.png">`
	got := Sanitize(raw)

	for _, banned := range []string{"<script", "onclick", "javascript:", "<img"} {
		if strings.Contains(got, banned) {
			t.Fatalf("sanitised output still contains %q: %s", banned, got)
		}
	}
	for _, kept := range []string{"<h2>Title</h2>", "<strong>bold</strong>", `href="https://example.com"`, `rel="nofollow"`} {
		if !strings.Contains(got, kept) {
			t.Fatalf("sanitised output lost %q: %s", kept, got)
		}
	}
}

func TestPlainText(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "<p>Hello</p><p>world</p>", want: "Hello world"},
		{input: "<p>Fish &amp; chips</p>", want: "Fish & chips"},
		{input: "<ul><li>one</li><li>two</li></ul>", want: "one two"},
	}
	for _, tc := range cases {
		if got := PlainText(tc.input); got != tc.want {
			t.Fatalf("PlainText(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
