package rules

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/schema"
)

func TestPasses(t *testing.T) {
	cases := []struct {
		name  string
		rule  Rule
		value Value
		want  bool
	}{
		{"required empty", Required(""), Text("   "), false},
		{"required filled", Required(""), Text("Tower"), true},
		{"required checkbox unchecked", Required(""), Checkbox(false), false},
		{"required checkbox checked", Required(""), Checkbox(true), true},
		{"minLength short", MinLength(20, ""), Text("short"), false},
		{"minLength skips empty", MinLength(20, ""), Text(""), true},
		{"minLength counts runes", MinLength(3, ""), Text("äöü"), true},
		{"maxLength long", MaxLength(3, ""), Text("toolong"), false},
		{"maxLength ok", MaxLength(3, ""), Text("abc"), true},
		{"pattern match", MustPattern(`^[1-5]$`, ""), Text("4"), true},
		{"pattern miss", MustPattern(`^[1-5]$`, ""), Text("9"), false},
		{"pattern skips empty", MustPattern(`^[1-5]$`, ""), Text(""), true},
		{"email ok", Email(""), Text("jane.doe+admin@example.co.uk"), true},
		{"email bad", Email(""), Text("jane@"), false},
		{"url ok", URL(""), Text("https://example.com/work?id=1"), true},
		{"url relative", URL(""), Text("/work/tower"), false},
		{"url garbage", URL(""), Text("not a url"), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Passes(tc.rule, tc.value); got != tc.want {
				t.Fatalf("Passes(%s, %+v): want %v, got %v", tc.rule.Kind, tc.value, tc.want, got)
			}
		})
	}
}

func TestFailures_KeepsOrder(t *testing.T) {
	list := []Rule{MinLength(10, "too short"), MustPattern(`^\d+$`, "digits only"), MaxLength(20, "too long")}
	failed := Failures(list, Text("abc"))

	var messages []string
	for _, rule := range failed {
		messages = append(messages, rule.Message)
	}
	if diff := cmp.Diff([]string{"too short", "digits only"}, messages); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_OrderAndCopies(t *testing.T) {
	reg := NewRegistry()
	reg.Register("project", "title", Required("Title is required"))
	reg.Register("project", "status", Required("Status is required"))
	reg.Register("project", "title", MinLength(3, "Too short"))

	if diff := cmp.Diff([]string{"title", "status"}, reg.Fields("project")); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	got := reg.Rules("project", "title")
	if len(got) != 2 || got[0].Kind != KindRequired || got[1].Kind != KindMinLength {
		t.Fatalf("unexpected rules: %+v", got)
	}
	got[0] = URL("mutated")
	if reg.Rules("project", "title")[0].Kind != KindRequired {
		t.Fatalf("registry rules must not be mutable through returned slices")
	}
}

func TestRegisterForm_DefaultsAndErrors(t *testing.T) {
	reg := NewRegistry()
	form := schema.Form{
		ID: "testimonial",
		Fields: []schema.Field{
			{Name: "clientName", Label: "Client name", Rules: []schema.RuleSpec{{Kind: "required"}, {Kind: "minLength", Value: 2}}},
			{Name: "company"},
			{Name: "rating", Rules: []schema.RuleSpec{{Kind: "pattern", Value: `^[1-5]$`, Message: "1 to 5"}}},
		},
	}
	if err := reg.RegisterForm(form); err != nil {
		t.Fatalf("register form: %v", err)
	}

	if diff := cmp.Diff([]string{"clientName", "rating"}, reg.Fields("testimonial")); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	clientRules := reg.Rules("testimonial", "clientName")
	if clientRules[0].Message != "Client name is required" {
		t.Fatalf("unexpected default message %q", clientRules[0].Message)
	}
	if clientRules[1].Message != "Client name must be at least 2 characters" {
		t.Fatalf("unexpected default message %q", clientRules[1].Message)
	}

	bad := schema.Form{ID: "broken", Fields: []schema.Field{{Name: "x", Rules: []schema.RuleSpec{{Kind: "pattern", Value: "("}}}}}
	if err := reg.RegisterForm(bad); err == nil || !strings.Contains(err.Error(), `field "x"`) {
		t.Fatalf("expected compile error, got %v", err)
	}
	if reg.Has("broken") {
		t.Fatalf("invalid forms must not be registered")
	}
}

func TestFromSpec_LengthValues(t *testing.T) {
	for _, raw := range []any{3, int64(3), uint64(3), float64(3), "3"} {
		rule, err := FromSpec(schema.RuleSpec{Kind: "maxLength", Value: raw}, "Name")
		if err != nil || rule.Length != 3 {
			t.Fatalf("value %#v: rule=%+v err=%v", raw, rule, err)
		}
	}
	for _, raw := range []any{nil, 2.5, "x", -1, true} {
		if _, err := FromSpec(schema.RuleSpec{Kind: "minLength", Value: raw}, "Name"); err == nil {
			t.Fatalf("value %#v should be rejected", raw)
		}
	}
}
