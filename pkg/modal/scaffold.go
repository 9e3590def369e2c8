package modal

import (
	"strings"

	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

// Scaffold mounts the nodes a form needs into tree under a scope named after
// the form id: one element per field plus a save control matching
// validation.SaveSelector. Headless callers use it in place of
// server-rendered markup.
func Scaffold(tree *dom.Tree, form schema.Form) *dom.Node {
	nodes := make([]*dom.Node, 0, len(form.Fields)+1)
	for _, field := range form.Fields {
		nodes = append(nodes, fieldNode(form.ID, field))
	}
	nodes = append(nodes, dom.NewNode(dom.TagButton, map[string]string{
		"id":        form.ID + "-save",
		"data-role": "save",
	}))
	return tree.AddScope(form.ID, nodes...)
}

// ScaffoldAll mounts every form of store.
func ScaffoldAll(tree *dom.Tree, store *schema.Store) {
	for _, form := range store.Forms() {
		Scaffold(tree, form)
	}
}

func fieldNode(dialogID string, field schema.Field) *dom.Node {
	id := dialogID + "-" + strings.ReplaceAll(field.Name, ".", "-")
	switch field.Kind {
	case schema.KindRichText:
		return dom.NewNode(dom.TagDiv, map[string]string{"id": id, "name": field.Name, "data-editor": "rich-text"})
	case schema.KindTextArea:
		return dom.TextArea(id, field.Name)
	case schema.KindSelect:
		return dom.NewNode(dom.TagSelect, map[string]string{"id": id, "name": field.Name})
	case schema.KindCheckbox:
		return dom.Input(id, field.Name, dom.TypeCheckbox)
	case schema.KindImage:
		node := dom.Input(id, field.Name, dom.TypeFile)
		node.SetAttr("accept", "image/*")
		return node
	case schema.KindDate:
		return dom.Input(id, field.Name, dom.TypeDate)
	case schema.KindNumber:
		return dom.Input(id, field.Name, dom.TypeNumber)
	case schema.KindEmail:
		return dom.Input(id, field.Name, dom.TypeEmail)
	case schema.KindURL:
		return dom.Input(id, field.Name, dom.TypeURL)
	default:
		return dom.Input(id, field.Name, dom.TypeText)
	}
}
