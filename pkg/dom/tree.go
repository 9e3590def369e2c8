package dom

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrScopeNotFound is returned when a scope (dialog container) is unknown.
	ErrScopeNotFound = errors.New("dom: scope not found")
	// ErrNodeNotFound is returned when a node is not part of the scope.
	ErrNodeNotFound = errors.New("dom: node not found")
)

// Document resolves and mutates nodes inside named scopes. A scope is the
// container of one dialog.
type Document interface {
	Query(scope, selector string) (*Node, bool)
	Append(scope string, node *Node) error
	Replace(scope string, old, replacement *Node) error
	Remove(node *Node)
	Focus(node *Node)
}

// Presenter is the modal show/hide primitive. Callers never touch the modal
// internals beyond these two calls.
type Presenter interface {
	Show(id string) error
	Hide(id string) error
}

// Tree is an in-memory Document and Presenter. Each scope is a root node
// registered with AddScope.
type Tree struct {
	mu      sync.RWMutex
	scopes  map[string]*Node
	visible map[string]bool
	focused *Node
	queries atomic.Int64
}

var (
	_ Document  = (*Tree)(nil)
	_ Presenter = (*Tree)(nil)
)

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		scopes:  make(map[string]*Node),
		visible: make(map[string]bool),
	}
}

// AddScope registers a container for the supplied id and attaches the given
// children to it. Registering an existing scope replaces it.
func (t *Tree) AddScope(id string, children ...*Node) *Node {
	root := NewNode(TagDiv, map[string]string{"id": id, "role": "dialog"})
	root.setAttached(true)
	for _, child := range children {
		root.AppendChild(child)
	}

	t.mu.Lock()
	if previous, ok := t.scopes[id]; ok {
		previous.setAttached(false)
	}
	t.scopes[id] = root
	t.mu.Unlock()
	return root
}

// Scope returns the container node for id.
func (t *Tree) Scope(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	root, ok := t.scopes[id]
	return root, ok
}

// Query returns the first node in scope matching selector. Supported
// selectors: "#id", "[attr=value]", "[attr]" and a bare field name.
func (t *Tree) Query(scope, selector string) (*Node, bool) {
	t.queries.Add(1)
	root, ok := t.Scope(scope)
	if !ok {
		return nil, false
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, false
	}
	found := root.find(selector)
	return found, found != nil
}

// Queries reports how many Query calls reached the tree.
func (t *Tree) Queries() int64 {
	return t.queries.Load()
}

// Append attaches node beneath the scope root.
func (t *Tree) Append(scope string, node *Node) error {
	root, ok := t.Scope(scope)
	if !ok {
		return fmt.Errorf("%w: %s", ErrScopeNotFound, scope)
	}
	root.AppendChild(node)
	return nil
}

// Replace swaps old for replacement inside scope. The old node is detached.
func (t *Tree) Replace(scope string, old, replacement *Node) error {
	root, ok := t.Scope(scope)
	if !ok {
		return fmt.Errorf("%w: %s", ErrScopeNotFound, scope)
	}
	parent := root.parentOf(old)
	if parent == nil || !parent.replaceChild(old, replacement) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, old.ID())
	}
	old.setAttached(false)
	replacement.setAttached(true)
	return nil
}

// Remove detaches node from whichever scope holds it.
func (t *Tree) Remove(node *Node) {
	if node == nil {
		return
	}
	t.mu.RLock()
	roots := make([]*Node, 0, len(t.scopes))
	for _, root := range t.scopes {
		roots = append(roots, root)
	}
	t.mu.RUnlock()

	for _, root := range roots {
		if parent := root.parentOf(node); parent != nil {
			parent.removeChild(node)
			node.setAttached(false)
			return
		}
	}
}

// Focus moves focus to node.
func (t *Tree) Focus(node *Node) {
	t.mu.Lock()
	previous := t.focused
	t.focused = node
	t.mu.Unlock()
	if previous != nil {
		previous.setFocused(false)
	}
	if node != nil {
		node.setFocused(true)
	}
}

// Focused returns the node that currently holds focus.
func (t *Tree) Focused() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.focused
}

// Show marks the modal with id visible.
func (t *Tree) Show(id string) error {
	if _, ok := t.Scope(id); !ok {
		return fmt.Errorf("%w: %s", ErrScopeNotFound, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible[id] = true
	return nil
}

// Hide marks the modal with id hidden.
func (t *Tree) Hide(id string) error {
	if _, ok := t.Scope(id); !ok {
		return fmt.Errorf("%w: %s", ErrScopeNotFound, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.visible, id)
	return nil
}

// Visible reports whether the modal with id is shown.
func (t *Tree) Visible(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visible[id]
}
