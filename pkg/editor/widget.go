package editor

import (
	"errors"
	"fmt"
	"sync"
)

// Options configures a widget instance.
type Options struct {
	Placeholder string
	Toolbar     []string
	ReadOnly    bool
}

// DefaultToolbar lists the formatting controls offered by default.
var DefaultToolbar = []string{"bold", "italic", "underline", "heading", "bullet-list", "ordered-list", "link"}

// Widget is a rich-text editing surface bound to one element.
type Widget interface {
	SetHTML(markup string)
	HTML() string
	PlainText() string
	Clear()
	Alive() bool
}

// Factory builds a widget for the element with the given id.
type Factory func(elementID string, opts Options) (Widget, error)

// InitError reports that a widget could not be constructed. The manager
// recovers from it by falling back to a plain textarea.
type InitError struct {
	Key string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("editor: init %s: %v", e.Key, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ErrUnavailable is the error produced by Unavailable.
var ErrUnavailable = errors.New("editor: rich text widget unavailable")

// Unavailable is a factory that always fails, used where no rich editor is
// installed.
func Unavailable(string, Options) (Widget, error) {
	return nil, ErrUnavailable
}

// MemoryWidget is an in-process Widget holding sanitised markup.
type MemoryWidget struct {
	mu        sync.RWMutex
	elementID string
	markup    string
	destroyed bool
}

// NewMemoryWidget returns a live widget bound to elementID.
func NewMemoryWidget(elementID string) *MemoryWidget {
	return &MemoryWidget{elementID: elementID}
}

// MemoryFactory builds MemoryWidget instances.
func MemoryFactory(elementID string, _ Options) (Widget, error) {
	return NewMemoryWidget(elementID), nil
}

func (w *MemoryWidget) SetHTML(markup string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markup = Sanitize(markup)
}

func (w *MemoryWidget) HTML() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.markup
}

func (w *MemoryWidget) PlainText() string {
	return PlainText(w.HTML())
}

func (w *MemoryWidget) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markup = ""
}

func (w *MemoryWidget) Alive() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.destroyed
}

// Destroy marks the widget dead, as happens when its host element is torn
// down outside the manager.
func (w *MemoryWidget) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroyed = true
}

// ElementID returns the id of the host element.
func (w *MemoryWidget) ElementID() string {
	return w.elementID
}
