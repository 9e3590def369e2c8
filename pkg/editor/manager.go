package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/notify"
)

// ErrNoElement is returned when Acquire has neither a live handle nor a node
// to build one on.
var ErrNoElement = errors.New("editor: host element missing")

// HandleKind distinguishes real widgets from textarea fallbacks.
type HandleKind string

const (
	KindWidget   HandleKind = "widget"
	KindFallback HandleKind = "fallback"
)

// Handle is the pooled editor of one field. Fallback handles wrap the
// textarea that replaced the widget host.
type Handle struct {
	Key       string
	Scope     string
	ElementID string
	Kind      HandleKind

	widget Widget
	node   *dom.Node
}

func (h *Handle) alive() bool {
	if h.Kind == KindFallback {
		return h.node != nil && h.node.Attached()
	}
	return h.widget != nil && h.widget.Alive()
}

func (h *Handle) setHTML(markup string) {
	if h.Kind == KindFallback {
		h.node.SetValue(markup)
		return
	}
	h.widget.SetHTML(markup)
}

func (h *Handle) html() string {
	if h.Kind == KindFallback {
		return Sanitize(h.node.Value())
	}
	return h.widget.HTML()
}

func (h *Handle) clear() {
	if h.Kind == KindFallback {
		h.node.SetValue("")
		return
	}
	h.widget.Clear()
}

// Stats reports pool activity.
type Stats struct {
	Created   int
	Reused    int
	Fallbacks int
	Live      int
}

// Option customises a Manager.
type Option func(*Manager)

// WithFactory sets the widget factory. The default builds MemoryWidgets.
func WithFactory(factory Factory) Option {
	return func(m *Manager) {
		if factory != nil {
			m.factory = factory
		}
	}
}

// WithNotifier sets where fallback warnings are shown.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithDurations sets notification display times.
func WithDurations(d notify.Durations) Option {
	return func(m *Manager) {
		m.durations = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.log = logger
		}
	}
}

// Manager pools one editor handle per key (elementcache.Key(dialog, field)).
// Handles survive dialog close with their content cleared and are reused
// on the next open.
type Manager struct {
	doc       dom.Document
	factory   Factory
	notifier  notify.Notifier
	durations notify.Durations
	log       *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle
	stats   Stats
}

// NewManager constructs a manager that replaces failed widget hosts through
// doc.
func NewManager(doc dom.Document, options ...Option) *Manager {
	m := &Manager{
		doc:       doc,
		factory:   MemoryFactory,
		notifier:  notify.Nop{},
		durations: notify.DefaultDurations(),
		log:       zap.NewNop(),
		handles:   make(map[string]*Handle),
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	m.log = m.log.Named("editor")
	return m
}

// Acquire returns an empty handle for key. A live pooled handle is cleared
// and reused; a dead one is dropped and rebuilt on node. When the factory
// fails, node is replaced by a textarea with the same id and name, a warning
// is shown and a fallback handle is returned.
func (m *Manager) Acquire(key, scope string, node *dom.Node, opts Options) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handle, ok := m.handles[key]; ok {
		if handle.alive() {
			handle.clear()
			m.stats.Reused++
			return handle, nil
		}
		delete(m.handles, key)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, key)
	}

	widget, err := m.factory(node.ID(), opts)
	if err == nil && widget != nil {
		handle := &Handle{Key: key, Scope: scope, ElementID: node.ID(), Kind: KindWidget, widget: widget}
		m.handles[key] = handle
		m.stats.Created++
		return handle, nil
	}
	if err == nil {
		err = errors.New("factory returned no widget")
	}
	initErr := &InitError{Key: key, Err: err}

	replacement := dom.TextArea(node.ID(), node.Name())
	if opts.Placeholder != "" {
		replacement.SetAttr("placeholder", opts.Placeholder)
	}
	if err := m.doc.Replace(scope, node, replacement); err != nil {
		return nil, fmt.Errorf("editor: fallback for %s: %w", key, errors.Join(initErr, err))
	}
	m.log.Warn("rich text widget failed, using textarea",
		zap.String("key", key),
		zap.Error(initErr))
	m.notifier.Notify(
		fmt.Sprintf("Rich text editor unavailable for %s, using plain text", node.Name()),
		notify.LevelWarning,
		m.durations.For(notify.LevelWarning),
	)

	handle := &Handle{Key: key, Scope: scope, ElementID: node.ID(), Kind: KindFallback, node: replacement}
	m.handles[key] = handle
	m.stats.Fallbacks++
	return handle, nil
}

// Handle returns the pooled handle for key.
func (m *Manager) Handle(key string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle, ok := m.handles[key]
	return handle, ok
}

// SetContent loads sanitised markup into the handle for key.
func (m *Manager) SetContent(key, markup string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle, ok := m.handles[key]
	if !ok || !handle.alive() {
		return false
	}
	handle.setHTML(Sanitize(markup))
	return true
}

// Content returns the sanitised markup held by key.
func (m *Manager) Content(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle, ok := m.handles[key]
	if !ok || !handle.alive() {
		return "", false
	}
	return handle.html(), true
}

// PlainText returns the text content of key with markup removed.
func (m *Manager) PlainText(key string) (string, bool) {
	markup, ok := m.Content(key)
	if !ok {
		return "", false
	}
	return PlainText(markup), true
}

// Release clears the content of key but keeps the handle for reuse.
func (m *Manager) Release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if handle, ok := m.handles[key]; ok && handle.alive() {
		handle.clear()
	}
}

// ReleaseScope clears every handle whose key starts with prefix and returns
// how many were cleared.
func (m *Manager) ReleaseScope(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	released := 0
	for key, handle := range m.handles {
		if !strings.HasPrefix(key, prefix) || !handle.alive() {
			continue
		}
		handle.clear()
		released++
	}
	return released
}

// Stats returns pool counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats
	stats.Live = 0
	for _, handle := range m.handles {
		if handle.alive() {
			stats.Live++
		}
	}
	return stats
}
