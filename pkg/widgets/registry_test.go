package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/schema"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := schema.Field{
		Name:     "summary",
		Kind:     schema.KindRichText,
		Metadata: map[string]string{"widget": "markdown"},
	}
	if got, ok := reg.Resolve(field); !ok || got != "markdown" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}

	field.Widget = "plain"
	if got, _ := reg.Resolve(field); got != "plain" {
		t.Fatalf("Field.Widget should take precedence over metadata, got %q", got)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  schema.Field
		expect string
	}{
		{name: "rich text", field: schema.Field{Kind: schema.KindRichText}, expect: WidgetRichText},
		{name: "image", field: schema.Field{Kind: schema.KindImage}, expect: WidgetImage},
		{name: "checkbox", field: schema.Field{Kind: schema.KindCheckbox}, expect: WidgetCheckbox},
		{name: "date", field: schema.Field{Kind: schema.KindDate}, expect: WidgetDatePicker},
		{name: "select kind", field: schema.Field{Kind: schema.KindSelect}, expect: WidgetSelect},
		{name: "text with options", field: schema.Field{Kind: schema.KindText, Options: []string{"a"}}, expect: WidgetSelect},
		{name: "textarea", field: schema.Field{Kind: schema.KindTextArea}, expect: WidgetTextArea},
		{name: "email falls back to text", field: schema.Field{Kind: schema.KindEmail}, expect: WidgetText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestRegister_CustomPriority(t *testing.T) {
	reg := NewRegistry()
	reg.Register("gallery", 100, func(field schema.Field) bool {
		return field.Kind == schema.KindImage && field.Metadata["multiple"] == "true"
	})

	multi := schema.Field{Kind: schema.KindImage, Metadata: map[string]string{"multiple": "true"}}
	if got, _ := reg.Resolve(multi); got != "gallery" {
		t.Fatalf("expected custom widget, got %q", got)
	}
	if got, _ := reg.Resolve(schema.Field{Kind: schema.KindImage}); got != WidgetImage {
		t.Fatalf("expected built-in image widget, got %q", got)
	}
}

func TestLayout_DefaultProjectForm(t *testing.T) {
	store, err := schema.Defaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	form, _ := store.Form("project")
	reg := NewRegistry()

	want := map[string]string{
		"title":       WidgetText,
		"status":      WidgetSelect,
		"description": WidgetRichText,
		"category":    WidgetText,
		"projectUrl":  WidgetText,
		"completedAt": WidgetDatePicker,
		"featured":    WidgetCheckbox,
		"image":       WidgetImage,
	}
	if diff := cmp.Diff(want, reg.Layout(form)); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if got := reg.FieldsFor(form, WidgetRichText); len(got) != 1 || got[0].Name != "description" {
		t.Fatalf("expected description as the only rich text field, got %+v", got)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	reg := &Registry{}
	if _, ok := reg.Resolve(schema.Field{Kind: schema.KindText}); ok {
		t.Fatalf("empty registry should not resolve")
	}
}
