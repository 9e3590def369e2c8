// Package elementcache memoises scoped node lookups. Dialogs open and close
// repeatedly and selector queries dominate their cost, so lookups are cached
// per (scope, selector) and evicted explicitly when a dialog closes.
package elementcache

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formmodal/pkg/dom"
)

// Separator joins a scope and a selector into a cache key. Callers that clear
// by dialog pass ScopePrefix(dialogID) so sibling dialogs sharing a name
// prefix are never evicted together.
const Separator = "::"

// Key returns the cache key for a scope and selector.
func Key(scope, selector string) string {
	return scope + Separator + selector
}

// ScopePrefix returns the prefix covering every key of scope.
func ScopePrefix(scope string) string {
	return scope + Separator
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// Cache holds node references keyed by Key(scope, selector).
type Cache struct {
	mu      sync.Mutex
	doc     dom.Document
	entries map[string]*dom.Node
	hits    int
	misses  int
}

// New constructs a cache backed by doc.
func New(doc dom.Document) *Cache {
	return &Cache{
		doc:     doc,
		entries: make(map[string]*dom.Node),
	}
}

// Get returns the node for selector within scope, querying the document only
// on the first lookup. Cached nodes that have since been detached are
// re-queried so a replaced element never leaks back to callers.
func (c *Cache) Get(scope, selector string) (*dom.Node, bool) {
	if c == nil || c.doc == nil {
		return nil, false
	}
	key := Key(scope, selector)

	c.mu.Lock()
	if node, ok := c.entries[key]; ok && node.Attached() {
		c.hits++
		c.mu.Unlock()
		return node, true
	}
	c.misses++
	c.mu.Unlock()

	node, ok := c.doc.Query(scope, selector)
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.entries[key] = node
	c.mu.Unlock()
	return node, true
}

// Clear evicts every entry whose key starts with prefix and returns the
// number removed.
func (c *Cache) Clear(prefix string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries under prefix.
func (c *Cache) Len(prefix string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
