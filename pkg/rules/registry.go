package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/schema"
)

// Registry maps dialog id → field name → ordered rule list. Rules are never
// mutated after registration; readers receive copies.
type Registry struct {
	mu      sync.RWMutex
	dialogs map[string]*dialogRules
}

type dialogRules struct {
	order  []string
	fields map[string][]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialogs: make(map[string]*dialogRules)}
}

// Register appends rules to a field of a dialog in the given order.
func (r *Registry) Register(dialogID, field string, list ...Rule) {
	if r == nil {
		return
	}
	dialogID = strings.TrimSpace(dialogID)
	field = strings.TrimSpace(field)
	if dialogID == "" || field == "" || len(list) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.dialogs[dialogID]
	if !ok {
		entry = &dialogRules{fields: make(map[string][]Rule)}
		r.dialogs[dialogID] = entry
	}
	if _, exists := entry.fields[field]; !exists {
		entry.order = append(entry.order, field)
	}
	entry.fields[field] = append(entry.fields[field], list...)
}

// RegisterForm compiles every rule spec of form and replaces any rules
// previously registered for the dialog. Nothing is registered when a spec is
// invalid.
func (r *Registry) RegisterForm(form schema.Form) error {
	if r == nil {
		return errors.New("rules: registry is nil")
	}
	compiled := &dialogRules{fields: make(map[string][]Rule)}
	for _, field := range form.Fields {
		if len(field.Rules) == 0 {
			continue
		}
		list := make([]Rule, 0, len(field.Rules))
		for _, spec := range field.Rules {
			rule, err := FromSpec(spec, field.DisplayLabel())
			if err != nil {
				return fmt.Errorf("rules: dialog %q field %q: %w", form.ID, field.Name, err)
			}
			list = append(list, rule)
		}
		compiled.order = append(compiled.order, field.Name)
		compiled.fields[field.Name] = list
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs[form.ID] = compiled
	return nil
}

// Rules returns a copy of the rules registered for a dialog field.
func (r *Registry) Rules(dialogID, field string) []Rule {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.dialogs[dialogID]
	if !ok {
		return nil
	}
	return append([]Rule(nil), entry.fields[field]...)
}

// Fields returns the fields of a dialog that carry rules, in registration
// order.
func (r *Registry) Fields(dialogID string) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.dialogs[dialogID]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.order...)
}

// Has reports whether any rules exist for the dialog.
func (r *Registry) Has(dialogID string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dialogs[dialogID]
	return ok
}

// FromSpec compiles a declarative rule, filling in a default message derived
// from label when the spec has none.
func FromSpec(spec schema.RuleSpec, label string) (Rule, error) {
	var (
		rule Rule
		err  error
	)
	switch Kind(strings.TrimSpace(spec.Kind)) {
	case KindRequired:
		rule = Required(spec.Message)
	case KindMinLength:
		n, convErr := intValue(spec.Value)
		if convErr != nil {
			return Rule{}, fmt.Errorf("minLength: %w", convErr)
		}
		rule = MinLength(n, spec.Message)
	case KindMaxLength:
		n, convErr := intValue(spec.Value)
		if convErr != nil {
			return Rule{}, fmt.Errorf("maxLength: %w", convErr)
		}
		rule = MaxLength(n, spec.Message)
	case KindPattern:
		expr, ok := spec.Value.(string)
		if !ok || expr == "" {
			return Rule{}, errors.New("pattern: expression is required")
		}
		rule, err = Pattern(expr, spec.Message)
		if err != nil {
			return Rule{}, err
		}
	case KindEmail:
		rule = Email(spec.Message)
	case KindURL:
		rule = URL(spec.Message)
	default:
		return Rule{}, fmt.Errorf("unknown rule kind %q", spec.Kind)
	}

	if strings.TrimSpace(rule.Message) == "" {
		rule.Message = DefaultMessage(rule, label)
	}
	return rule, nil
}

func intValue(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return nonNegative(v)
	case int64:
		return nonNegative(int(v))
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("length %d out of range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("length %v is not an integer", v)
		}
		return nonNegative(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("length %q: %w", v, err)
		}
		return nonNegative(n)
	case nil:
		return 0, errors.New("length is required")
	default:
		return 0, fmt.Errorf("unsupported length type %T", raw)
	}
}

func nonNegative(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("length %d is negative", n)
	}
	return n, nil
}
