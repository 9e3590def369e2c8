package validation

import (
	"strings"
	"sync"
)

// Phase is the validation trigger state of one field.
type Phase int

const (
	// Untouched fields are not validated on input.
	Untouched Phase = iota
	// TouchedImmediate fields have been blurred and validated at once.
	TouchedImmediate
	// TouchedDebounced fields validate after a quiet period on every input.
	TouchedDebounced
)

func (p Phase) String() string {
	switch p {
	case TouchedImmediate:
		return "touched(immediate)"
	case TouchedDebounced:
		return "touched(debounced)"
	default:
		return "untouched"
	}
}

// Action tells the caller what to do after an event.
type Action int

const (
	ActionNone Action = iota
	ActionValidateNow
	ActionSchedule
)

// Trigger tracks per-field phases keyed by elementcache.Key(dialog, field).
// Blur always validates immediately; input only validates once the field has
// been blurred, and then through the debouncer.
type Trigger struct {
	mu     sync.Mutex
	phases map[string]Phase
}

// NewTrigger returns a trigger with every field untouched.
func NewTrigger() *Trigger {
	return &Trigger{phases: make(map[string]Phase)}
}

// Blur records a blur event.
func (t *Trigger) Blur(key string) Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phases[key] == Untouched {
		t.phases[key] = TouchedImmediate
	}
	return ActionValidateNow
}

// Input records an input event.
func (t *Trigger) Input(key string) Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.phases[key] {
	case Untouched:
		return ActionNone
	default:
		t.phases[key] = TouchedDebounced
		return ActionSchedule
	}
}

// Phase returns the current phase of key.
func (t *Trigger) Phase(key string) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phases[key]
}

// Reset returns every key under prefix to untouched and reports how many
// were reset.
func (t *Trigger) Reset(prefix string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key := range t.phases {
		if strings.HasPrefix(key, prefix) {
			delete(t.phases, key)
			removed++
		}
	}
	return removed
}
