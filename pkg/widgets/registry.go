package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/schema"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetRichText   = "rich-text"
	WidgetImage      = "image-upload"
	WidgetCheckbox   = "checkbox"
	WidgetDatePicker = "date-picker"
	WidgetSelect     = "select"
	WidgetTextArea   = "textarea"
	WidgetText       = "text"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority. The latest
// registration of a name wins ties.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Field.Widget and the
// "widget" metadata hint are honoured before matchers run.
func (r *Registry) Resolve(field schema.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order > rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Layout maps every field of form to its widget name.
func (r *Registry) Layout(form schema.Form) map[string]string {
	out := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if widget, ok := r.Resolve(field); ok {
			out[field.Name] = widget
		}
	}
	return out
}

// FieldsFor returns the fields of form resolved to widget, in declaration
// order.
func (r *Registry) FieldsFor(form schema.Form, widget string) []schema.Field {
	var out []schema.Field
	for _, field := range form.Fields {
		if resolved, ok := r.Resolve(field); ok && resolved == widget {
			out = append(out, field)
		}
	}
	return out
}

func explicitWidget(field schema.Field) string {
	if widget := strings.TrimSpace(field.Widget); widget != "" {
		return widget
	}
	if field.Metadata != nil {
		if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
			return widget
		}
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetRichText, 90, func(field schema.Field) bool {
		return field.Kind == schema.KindRichText
	})

	r.Register(WidgetImage, 80, func(field schema.Field) bool {
		return field.Kind == schema.KindImage
	})

	r.Register(WidgetCheckbox, 70, func(field schema.Field) bool {
		return field.Kind == schema.KindCheckbox
	})

	r.Register(WidgetDatePicker, 60, func(field schema.Field) bool {
		return field.Kind == schema.KindDate
	})

	r.Register(WidgetSelect, 50, func(field schema.Field) bool {
		return field.Kind == schema.KindSelect || len(field.Options) > 0
	})

	r.Register(WidgetTextArea, 40, func(field schema.Field) bool {
		return field.Kind == schema.KindTextArea
	})

	r.Register(WidgetText, 0, func(schema.Field) bool {
		return true
	})
}
