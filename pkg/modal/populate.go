package modal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/editor"
	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// DateLayout is how dates are shown in date inputs and stored in records.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// resetLocked clears every field of a dialog and acquires its editors.
func (o *Orchestrator) resetLocked(reg registration) error {
	dialogID := reg.form.ID
	for _, field := range reg.form.Fields {
		key := elementcache.Key(dialogID, field.Name)
		node, found := o.nodeLocked(dialogID, field)

		switch reg.widget(field.Name) {
		case widgets.WidgetRichText:
			opts := o.editorOptions
			if opts.Placeholder == "" {
				opts.Placeholder = field.DisplayLabel()
			}
			if _, err := o.editors.Acquire(key, dialogID, node, opts); err != nil {
				if !found {
					o.log.Warn("editor host missing", zap.String("dialog", dialogID), zap.String("field", field.Name))
					continue
				}
				return fmt.Errorf("modal: acquire editor %s: %w", key, err)
			}
		case widgets.WidgetImage:
			o.previews.Clear(key)
		}

		if !found {
			continue
		}
		node.ClearInvalid()
		if reg.widget(field.Name) == widgets.WidgetCheckbox {
			node.SetChecked(false)
			continue
		}
		if reg.widget(field.Name) != widgets.WidgetRichText {
			node.SetValue("")
		}
	}
	return nil
}

// populateLocked copies record values into the dialog's fields.
func (o *Orchestrator) populateLocked(reg registration, data map[string]any) {
	dialogID := reg.form.ID
	for _, field := range reg.form.Fields {
		value, ok := getPath(data, field.Name)
		if !ok || value == nil {
			continue
		}
		key := elementcache.Key(dialogID, field.Name)

		switch reg.widget(field.Name) {
		case widgets.WidgetRichText:
			if !o.editors.SetContent(key, displayString(value)) {
				if node, found := o.nodeLocked(dialogID, field); found {
					node.SetValue(editor.Sanitize(displayString(value)))
				}
			}
			continue
		case widgets.WidgetImage:
			if ref := strings.TrimSpace(displayString(value)); ref != "" {
				o.previews.AddExisting(key, ref)
			}
			continue
		}

		node, found := o.nodeLocked(dialogID, field)
		if !found {
			o.log.Warn("field node missing during populate",
				zap.String("dialog", dialogID),
				zap.String("field", field.Name))
			continue
		}
		switch reg.widget(field.Name) {
		case widgets.WidgetCheckbox:
			node.SetChecked(truthy(value))
		case widgets.WidgetDatePicker:
			node.SetValue(normaliseDate(value))
		default:
			node.SetValue(displayString(value))
		}
	}
}

func displayString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(DateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// normaliseDate renders value as YYYY-MM-DD. Unparseable input is returned
// unchanged so the user can see and fix it.
func normaliseDate(value any) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	}
	raw := strings.TrimSpace(displayString(value))
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(DateLayout)
		}
	}
	return raw
}

func parseNumber(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
