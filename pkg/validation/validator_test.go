package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/rules"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

type fixture struct {
	tree      *dom.Tree
	validator *Validator
	form      schema.Form
}

func newFixture(t *testing.T, dialogID string, options ...Option) fixture {
	t.Helper()
	store, err := schema.Defaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	form, ok := store.Form(dialogID)
	if !ok {
		t.Fatalf("form %q missing", dialogID)
	}

	tree := dom.NewTree()
	nodes := []*dom.Node{dom.NewNode(dom.TagButton, map[string]string{"id": dialogID + "-save", "data-role": "save"})}
	for _, field := range form.Fields {
		typ := dom.TypeText
		if field.Kind == schema.KindCheckbox {
			typ = dom.TypeCheckbox
		}
		nodes = append(nodes, dom.Input(dialogID+"-"+field.Name, field.Name, typ))
	}
	tree.AddScope(dialogID, nodes...)

	registry := rules.NewRegistry()
	if err := registry.RegisterForm(form); err != nil {
		t.Fatalf("register: %v", err)
	}
	v := New(registry, elementcache.New(tree), options...)
	v.Bind(form)
	return fixture{tree: tree, validator: v, form: form}
}

func (f fixture) set(t *testing.T, field, value string) {
	t.Helper()
	node, ok := f.tree.Query(f.form.ID, "[name="+field+"]")
	if !ok {
		t.Fatalf("node %q missing", field)
	}
	node.SetValue(value)
}

func TestValidateForm_EmptyAddDialogCountsRequiredFields(t *testing.T) {
	for _, id := range []string{"project", "testimonial", "service", "teamMember", "blogPost"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t, id)
			result := f.validator.ValidateForm(id)
			if result.IsValid {
				t.Fatalf("empty dialog should be invalid")
			}
			if result.ErrorCount != f.form.RequiredCount() {
				t.Fatalf("errorCount: want %d, got %d", f.form.RequiredCount(), result.ErrorCount)
			}
		})
	}
}

func TestValidateForm_Testimonial(t *testing.T) {
	f := newFixture(t, "testimonial")
	f.set(t, "clientName", "")
	f.set(t, "testimonialText", "short")

	result := f.validator.ValidateForm("testimonial")
	want := Result{
		IsValid:    false,
		ErrorCount: 2,
		Errors: []FieldError{
			{Field: "clientName", Message: "Client name is required", Failed: []rules.Kind{rules.KindRequired}},
			{Field: "testimonialText", Message: "Testimonial must be at least 20 characters", Failed: []rules.Kind{rules.KindMinLength}},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	node, _ := f.tree.Query("testimonial", "[name=clientName]")
	if msg, invalid := node.Invalid(); !invalid || msg != "Client name is required" {
		t.Fatalf("expected error display on clientName, got %q %v", msg, invalid)
	}
}

func TestValidateForm_CountsEveryFailingRule(t *testing.T) {
	f := newFixture(t, "testimonial")
	f.set(t, "clientName", "Ada")
	f.set(t, "testimonialText", "A thoroughly convincing endorsement.")
	f.set(t, "rating", "9")
	f.set(t, "clientEmail", "not-an-email")

	result := f.validator.ValidateForm("testimonial")
	if result.ErrorCount != 2 || len(result.Errors) != 2 {
		t.Fatalf("expected two failures, got %+v", result)
	}
	if result.Errors[0].Field != "rating" || result.Errors[1].Field != "clientEmail" {
		t.Fatalf("errors out of field order: %+v", result.Errors)
	}
}

func TestValidateForm_AllValid(t *testing.T) {
	f := newFixture(t, "testimonial")
	f.set(t, "clientName", "Ada Lovelace")
	f.set(t, "testimonialText", "The engine did exactly what we hoped it would.")
	f.set(t, "rating", "5")
	f.set(t, "clientEmail", "ada@example.com")

	result := f.validator.ValidateForm("testimonial")
	if !result.IsValid || result.ErrorCount != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected valid form, got %+v", result)
	}
	node, _ := f.tree.Query("testimonial", "[name=clientName]")
	if _, invalid := node.Invalid(); invalid {
		t.Fatalf("valid field still shows an error")
	}
}

type stubText map[string]string

func (s stubText) PlainText(key string) (string, bool) {
	text, ok := s[key]
	return text, ok
}

func TestValidateForm_ReadsEditorPlainText(t *testing.T) {
	text := stubText{elementcache.Key("project", "description"): "short"}
	f := newFixture(t, "project", WithTextSource(text))
	f.set(t, "title", "Harbour Tower")
	f.set(t, "status", "draft")
	f.set(t, "description", "the node value is ignored for editor fields")

	result := f.validator.ValidateForm("project")
	if result.ErrorCount != 1 || result.Errors[0].Field != "description" {
		t.Fatalf("expected editor text to be validated, got %+v", result)
	}
}

func TestValidateForm_MissingNodeSkippedWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, "testimonial", WithLogger(zap.New(core)))
	node, _ := f.tree.Query("testimonial", "[name=clientName]")
	f.tree.Remove(node)

	result := f.validator.ValidateForm("testimonial")
	if result.ErrorCount != 1 {
		t.Fatalf("expected only testimonialText to fail, got %+v", result)
	}
	if logs.FilterMessage("field node not found, skipping").Len() != 1 {
		t.Fatalf("expected a warning for the missing node, got %v", logs.AllUntimed())
	}
}

func TestUpdateSaveControl(t *testing.T) {
	f := newFixture(t, "testimonial")
	save, _ := f.tree.Query("testimonial", SaveSelector)

	f.validator.UpdateSaveControl("testimonial")
	if !save.Disabled() {
		t.Fatalf("save control should be disabled while invalid")
	}

	f.set(t, "clientName", "Ada Lovelace")
	f.set(t, "testimonialText", "The engine did exactly what we hoped it would.")
	if result := f.validator.UpdateSaveControl("testimonial"); !result.IsValid {
		t.Fatalf("expected valid result, got %+v", result)
	}
	if save.Disabled() {
		t.Fatalf("save control should be enabled once valid")
	}
}

func TestValidateField(t *testing.T) {
	f := newFixture(t, "project")
	if _, invalid := f.validator.ValidateField("project", "title"); !invalid {
		t.Fatalf("empty title should be invalid")
	}
	f.set(t, "title", "Harbour Tower")
	if fieldErr, invalid := f.validator.ValidateField("project", "title"); invalid {
		t.Fatalf("unexpected error %+v", fieldErr)
	}
	if _, invalid := f.validator.ValidateField("project", "featured"); invalid {
		t.Fatalf("field without rules cannot be invalid")
	}
}

func TestValidateForm_CheckboxRequired(t *testing.T) {
	tree := dom.NewTree()
	terms := dom.Input("terms", "terms", dom.TypeCheckbox)
	tree.AddScope("signup", terms)
	registry := rules.NewRegistry()
	registry.Register("signup", "terms", rules.Required("Accept the terms"))
	v := New(registry, elementcache.New(tree))

	if result := v.ValidateForm("signup"); result.ErrorCount != 1 {
		t.Fatalf("unchecked box should fail, got %+v", result)
	}
	terms.SetChecked(true)
	if result := v.ValidateForm("signup"); !result.IsValid {
		t.Fatalf("checked box should pass, got %+v", result)
	}
}
