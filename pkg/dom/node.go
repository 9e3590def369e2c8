package dom

import (
	"strings"
	"sync"
)

// Common tag and input type identifiers.
const (
	TagInput    = "input"
	TagTextArea = "textarea"
	TagSelect   = "select"
	TagDiv      = "div"
	TagImg      = "img"
	TagButton   = "button"

	TypeText     = "text"
	TypeCheckbox = "checkbox"
	TypeFile     = "file"
	TypeDate     = "date"
	TypeNumber   = "number"
	TypeEmail    = "email"
	TypeURL      = "url"
)

// InvalidClass is toggled on nodes that currently display a validation error.
const InvalidClass = "is-invalid"

// Node is a minimal element model: enough state for form population,
// validation display and focus management. All methods are safe for
// concurrent use.
type Node struct {
	mu       sync.RWMutex
	id       string
	tag      string
	attrs    map[string]string
	classes  map[string]struct{}
	value    string
	checked  bool
	disabled bool
	attached bool
	invalid  string
	focused  bool
	children []*Node
}

// NewNode constructs a detached node. Attributes are copied; "id" is read from
// the attribute map when present.
func NewNode(tag string, attrs map[string]string) *Node {
	n := &Node{
		tag:     strings.ToLower(strings.TrimSpace(tag)),
		attrs:   make(map[string]string, len(attrs)),
		classes: make(map[string]struct{}),
	}
	for k, v := range attrs {
		n.attrs[k] = v
	}
	n.id = n.attrs["id"]
	return n
}

// Input is shorthand for an <input> with the given id, name and type.
func Input(id, name, typ string) *Node {
	return NewNode(TagInput, map[string]string{"id": id, "name": name, "type": typ})
}

// TextArea is shorthand for a <textarea> with the given id and name.
func TextArea(id, name string) *Node {
	return NewNode(TagTextArea, map[string]string{"id": id, "name": name})
}

func (n *Node) ID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.id
}

func (n *Node) Tag() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tag
}

// Name returns the form field name attribute.
func (n *Node) Name() string {
	return n.Attr("name")
}

// Type returns the input type attribute, defaulting to "text" for inputs.
func (n *Node) Type() string {
	typ := n.Attr("type")
	if typ == "" && n.Tag() == TagInput {
		return TypeText
	}
	return typ
}

func (n *Node) Attr(key string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attrs[key]
}

func (n *Node) SetAttr(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[key] = value
	if key == "id" {
		n.id = value
	}
}

func (n *Node) Value() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

func (n *Node) SetValue(value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = value
}

func (n *Node) Checked() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.checked
}

func (n *Node) SetChecked(checked bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.checked = checked
}

func (n *Node) Disabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.disabled
}

func (n *Node) SetDisabled(disabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disabled = disabled
}

// Attached reports whether the node is still part of a document.
func (n *Node) Attached() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attached
}

func (n *Node) setAttached(attached bool) {
	n.mu.Lock()
	n.attached = attached
	children := append([]*Node(nil), n.children...)
	n.mu.Unlock()
	for _, child := range children {
		child.setAttached(attached)
	}
}

// SetInvalid displays a validation message on the node.
func (n *Node) SetInvalid(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalid = message
	n.classes[InvalidClass] = struct{}{}
}

// ClearInvalid removes any validation message.
func (n *Node) ClearInvalid() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalid = ""
	delete(n.classes, InvalidClass)
}

// Invalid returns the displayed validation message, if any.
func (n *Node) Invalid() (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.classes[InvalidClass]
	return n.invalid, ok
}

func (n *Node) HasClass(class string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.classes[class]
	return ok
}

func (n *Node) Focused() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.focused
}

func (n *Node) setFocused(focused bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.focused = focused
}

// AppendChild adds child beneath n, inheriting n's attachment.
func (n *Node) AppendChild(child *Node) {
	if child == nil {
		return
	}
	n.mu.Lock()
	n.children = append(n.children, child)
	attached := n.attached
	n.mu.Unlock()
	child.setAttached(attached)
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

func (n *Node) removeChild(child *Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for idx, candidate := range n.children {
		if candidate == child {
			n.children = append(n.children[:idx], n.children[idx+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) replaceChild(old, replacement *Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for idx, candidate := range n.children {
		if candidate == old {
			n.children[idx] = replacement
			return true
		}
	}
	return false
}

func (n *Node) matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return n.ID() == strings.TrimPrefix(selector, "#")
	case strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]"):
		inner := strings.TrimSuffix(strings.TrimPrefix(selector, "["), "]")
		key, value, ok := strings.Cut(inner, "=")
		if !ok {
			n.mu.RLock()
			_, exists := n.attrs[strings.TrimSpace(inner)]
			n.mu.RUnlock()
			return exists
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		return n.Attr(strings.TrimSpace(key)) == value
	default:
		return n.Name() == selector
	}
}

func (n *Node) find(selector string) *Node {
	for _, child := range n.Children() {
		if child.matches(selector) {
			return child
		}
		if found := child.find(selector); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) parentOf(target *Node) *Node {
	for _, child := range n.Children() {
		if child == target {
			return n
		}
		if parent := child.parentOf(target); parent != nil {
			return parent
		}
	}
	return nil
}
