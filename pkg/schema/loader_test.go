package schema

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults_ContentTypes(t *testing.T) {
	store, err := Defaults()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	var ids []string
	for _, ref := range store.FormRefs() {
		ids = append(ids, ref.ID)
	}
	want := []string{"blogPost", "project", "service", "teamMember", "testimonial"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	project, ok := store.Form("project")
	if !ok {
		t.Fatalf("project form missing")
	}
	if project.TypeTag != "projects" {
		t.Fatalf("unexpected type tag %q", project.TypeTag)
	}
	if got := project.RequiredCount(); got != 3 {
		t.Fatalf("project required fields: want 3, got %d", got)
	}
	if len(project.FieldsOfKind(KindRichText)) != 1 || len(project.FieldsOfKind(KindImage)) != 1 {
		t.Fatalf("project should have one rich text and one image field")
	}
}

func TestLoadFS_RejectsDuplicatesAndUnknownKinds(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": {Data: []byte("forms:\n  x:\n    fields:\n      - name: a\n")},
		"b.yaml": {Data: []byte("forms:\n  x:\n    fields:\n      - name: b\n")},
	}
	if _, err := LoadFS(dup); err == nil || !strings.Contains(err.Error(), "duplicate form") {
		t.Fatalf("expected duplicate form error, got %v", err)
	}

	badKind := fstest.MapFS{
		"a.yaml": {Data: []byte("forms:\n  x:\n    fields:\n      - name: a\n        kind: slider\n")},
	}
	if _, err := LoadFS(badKind); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}

func TestParse_JSONDefaults(t *testing.T) {
	store, err := Parse([]byte(`{"forms":{"note":{"fields":[{"name":"body","rules":[{"kind":"required"}]}]}}}`), "note.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, ok := store.Form("note")
	if !ok {
		t.Fatalf("note form missing")
	}
	want := Form{
		ID:      "note",
		TypeTag: "note",
		Source:  "note.json",
		Fields: []Field{
			{Name: "body", Kind: KindText, Rules: []RuleSpec{{Kind: "required"}}},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if got := form.Fields[0].QuerySelector(); got != "[name=body]" {
		t.Fatalf("unexpected selector %q", got)
	}
}

const openapiDoc = `
openapi: 3.0.3
info:
  title: Admin
  version: "1.0"
paths: {}
components:
  schemas:
    Testimonial:
      type: object
      title: Testimonial
      required: [clientName, testimonialText]
      x-formmodal-order: [clientName, testimonialText]
      properties:
        id:
          type: integer
          readOnly: true
        clientName:
          type: string
          minLength: 2
        testimonialText:
          type: string
          minLength: 20
          x-formmodal-kind: textarea
        clientEmail:
          type: string
          format: email
        featured:
          type: boolean
        website:
          type: string
          format: uri
`

func TestFromOpenAPI(t *testing.T) {
	form, err := FromOpenAPI(context.Background(), []byte(openapiDoc), "Testimonial", OpenAPIOptions{DialogID: "testimonial", TypeTag: "testimonials"})
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	want := Form{
		ID:      "testimonial",
		TypeTag: "testimonials",
		Title:   "Testimonial",
		Source:  "openapi#/components/schemas/Testimonial",
		Fields: []Field{
			{Name: "clientName", Kind: KindText, Rules: []RuleSpec{{Kind: "required"}, {Kind: "minLength", Value: 2}}},
			{Name: "testimonialText", Kind: KindTextArea, Rules: []RuleSpec{{Kind: "required"}, {Kind: "minLength", Value: 20}}},
			{Name: "clientEmail", Kind: KindEmail, Rules: []RuleSpec{{Kind: "email"}}},
			{Name: "featured", Kind: KindCheckbox},
			{Name: "website", Kind: KindURL, Rules: []RuleSpec{{Kind: "url"}}},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFromOpenAPI_UnknownComponent(t *testing.T) {
	if _, err := FromOpenAPI(context.Background(), []byte(openapiDoc), "Missing", OpenAPIOptions{}); err == nil {
		t.Fatalf("expected error for unknown component")
	}
}

func TestLoadOpenAPIFS(t *testing.T) {
	annotated := strings.Replace(openapiDoc,
		"      title: Testimonial\n",
		"      title: Testimonial\n      x-formmodal-dialog: testimonial\n      x-formmodal-type: testimonials\n", 1)
	fsys := fstest.MapFS{
		"content.openapi.yaml": {Data: []byte(annotated)},
		"plain.openapi.yaml":   {Data: []byte(openapiDoc)},
	}

	store, err := LoadOpenAPIFS(context.Background(), fsys)
	if err != nil {
		t.Fatalf("load openapi: %v", err)
	}
	if len(store.Forms()) != 1 {
		t.Fatalf("only annotated components become forms, got %d", len(store.Forms()))
	}
	form, ok := store.Form("testimonial")
	if !ok {
		t.Fatalf("testimonial form missing")
	}
	if form.TypeTag != "testimonials" || form.Source != "content.openapi.yaml#/components/schemas/Testimonial" {
		t.Fatalf("unexpected form metadata: %+v", form)
	}
	if !form.Fields[0].Required() || form.Fields[1].Kind != KindTextArea {
		t.Fatalf("unexpected fields: %+v", form.Fields)
	}

	yamlForms, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS must skip openapi documents: %v", err)
	}
	if !yamlForms.Empty() {
		t.Fatalf("openapi documents are not form definitions")
	}
}

func TestLoadOpenAPIFS_DuplicateDialog(t *testing.T) {
	annotated := strings.Replace(openapiDoc,
		"      title: Testimonial\n",
		"      title: Testimonial\n      x-formmodal-dialog: testimonial\n", 1)
	fsys := fstest.MapFS{
		"a.openapi.yaml": {Data: []byte(annotated)},
		"b.openapi.yml":  {Data: []byte(annotated)},
	}
	if _, err := LoadOpenAPIFS(context.Background(), fsys); err == nil || !strings.Contains(err.Error(), "duplicate form") {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}
