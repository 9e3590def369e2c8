package imageintake

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ObjectURLs mints and revokes short-lived URLs referencing in-memory files.
type ObjectURLs interface {
	Create(file File) string
	Revoke(url string)
}

// MemoryURLs is an ObjectURLs that tracks every URL it has minted.
type MemoryURLs struct {
	mu      sync.Mutex
	live    map[string]File
	revoked map[string]int
}

// NewMemoryURLs returns an empty minter.
func NewMemoryURLs() *MemoryURLs {
	return &MemoryURLs{
		live:    make(map[string]File),
		revoked: make(map[string]int),
	}
}

// Create mints a blob: URL for file.
func (m *MemoryURLs) Create(file File) string {
	url := "blob:" + uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[url] = file
	return url
}

// Revoke releases url. Revoking twice is recorded so tests can detect it.
func (m *MemoryURLs) Revoke(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, url)
	m.revoked[url]++
}

// Resolve returns the file behind a live URL.
func (m *MemoryURLs) Resolve(url string) (File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.live[url]
	return file, ok
}

// Outstanding returns the number of live URLs.
func (m *MemoryURLs) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Revocations returns how many times url was revoked.
func (m *MemoryURLs) Revocations(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[url]
}

// Entry is one displayed preview. Owner is the elementcache key of the field
// the preview belongs to. Existing entries show an image already stored on
// the record; they hold no minted URL.
type Entry struct {
	PreviewID string
	Owner     string
	Source    File
	ObjectURL string
	Existing  bool
}

// Reference returns the value persisted for the entry: the original stored
// reference for existing images, otherwise a data URL of the file.
func (e Entry) Reference() string {
	if e.Existing {
		return e.ObjectURL
	}
	return e.Source.DataURL()
}

// Previews owns preview entries and guarantees each minted URL is revoked
// exactly once.
type Previews struct {
	urls ObjectURLs

	mu      sync.Mutex
	entries map[string]Entry
	seq     int
	order   map[string]int
}

// NewPreviews returns an empty preview table minting URLs through urls.
func NewPreviews(urls ObjectURLs) *Previews {
	if urls == nil {
		urls = NewMemoryURLs()
	}
	return &Previews{
		urls:    urls,
		entries: make(map[string]Entry),
		order:   make(map[string]int),
	}
}

// Add mints a URL for file and records it under owner.
func (p *Previews) Add(owner string, file File) Entry {
	entry := Entry{
		PreviewID: uuid.NewString(),
		Owner:     owner,
		Source:    file.normalised(),
		ObjectURL: p.urls.Create(file),
	}
	p.put(entry)
	return entry
}

// AddExisting records a stored image reference, such as a data URL loaded
// with a record being edited.
func (p *Previews) AddExisting(owner, reference string) Entry {
	entry := Entry{
		PreviewID: uuid.NewString(),
		Owner:     owner,
		ObjectURL: reference,
		Existing:  true,
	}
	p.put(entry)
	return entry
}

func (p *Previews) put(entry Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.entries[entry.PreviewID] = entry
	p.order[entry.PreviewID] = p.seq
}

// Remove drops one preview and revokes its URL.
func (p *Previews) Remove(previewID string) (Entry, bool) {
	p.mu.Lock()
	entry, ok := p.entries[previewID]
	if ok {
		delete(p.entries, previewID)
		delete(p.order, previewID)
	}
	p.mu.Unlock()
	if ok {
		p.revoke(entry)
	}
	return entry, ok
}

// Clear removes every preview owned by exactly owner.
func (p *Previews) Clear(owner string) int {
	return p.removeWhere(func(e Entry) bool { return e.Owner == owner })
}

// ClearScope removes every preview whose owner starts with prefix.
func (p *Previews) ClearScope(prefix string) int {
	return p.removeWhere(func(e Entry) bool { return strings.HasPrefix(e.Owner, prefix) })
}

func (p *Previews) removeWhere(match func(Entry) bool) int {
	p.mu.Lock()
	var removed []Entry
	for id, entry := range p.entries {
		if match(entry) {
			removed = append(removed, entry)
			delete(p.entries, id)
			delete(p.order, id)
		}
	}
	p.mu.Unlock()
	for _, entry := range removed {
		p.revoke(entry)
	}
	return len(removed)
}

func (p *Previews) revoke(entry Entry) {
	if !entry.Existing && entry.ObjectURL != "" {
		p.urls.Revoke(entry.ObjectURL)
	}
}

// Live returns entries whose owner starts with prefix, oldest first.
func (p *Previews) Live(prefix string) []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Entry
	for _, entry := range p.entries {
		if strings.HasPrefix(entry.Owner, prefix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return p.order[out[i].PreviewID] < p.order[out[j].PreviewID]
	})
	return out
}

// Owned returns entries owned by exactly owner, oldest first.
func (p *Previews) Owned(owner string) []Entry {
	var out []Entry
	for _, entry := range p.Live(owner) {
		if entry.Owner == owner {
			out = append(out, entry)
		}
	}
	return out
}

// Replace swaps the source of a preview after compression. The URL is kept.
func (p *Previews) Replace(previewID string, file File) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[previewID]
	if !ok {
		return false
	}
	entry.Source = file.normalised()
	p.entries[previewID] = entry
	return true
}
