package dialog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrAlreadyOpen is returned when opening a dialog that is already open.
	ErrAlreadyOpen = errors.New("dialog: already open")
	// ErrNotOpen is returned when mutating a dialog that is closed.
	ErrNotOpen = errors.New("dialog: not open")
)

// Mode distinguishes creating a record from editing an existing one.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// State is the live state of one open dialog. Record is the backing record in
// edit mode and nil in add mode. Session is unique per Open call, so work
// started in one session can tell when the dialog was closed and reopened.
type State struct {
	ID       string
	Mode     Mode
	Record   map[string]any
	Dirty    bool
	OpenedAt time.Time
	Session  uint64
}

// Store holds the state of every open dialog. A state exists exactly while
// its dialog is open.
type Store struct {
	mu   sync.RWMutex
	open     map[string]*State
	now      func() time.Time
	sessions uint64
}

// Option customises a Store.
type Option func(*Store)

// WithNow overrides the clock used for OpenedAt.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(options ...Option) *Store {
	s := &Store{
		open: make(map[string]*State),
		now:  time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open registers id as open. Dirty starts false.
func (s *Store) Open(id string, mode Mode, record map[string]any) (State, error) {
	if mode != ModeAdd && mode != ModeEdit {
		return State{}, fmt.Errorf("dialog: unknown mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[id]; ok {
		return State{}, fmt.Errorf("%w: %s", ErrAlreadyOpen, id)
	}
	s.sessions++
	state := &State{
		ID:       id,
		Mode:     mode,
		Record:   cloneRecord(record),
		OpenedAt: s.now(),
		Session:  s.sessions,
	}
	s.open[id] = state
	return state.snapshot(), nil
}

// Get returns a copy of the state of id.
func (s *Store) Get(id string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.open[id]
	if !ok {
		return State{}, false
	}
	return state.snapshot(), true
}

// Current reports whether session is still the open session of id.
func (s *Store) Current(id string, session uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.open[id]
	return ok && state.Session == session
}

// IsOpen reports whether id is open.
func (s *Store) IsOpen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.open[id]
	return ok
}

// MarkDirty flags unsaved changes.
func (s *Store) MarkDirty(id string) error {
	return s.setDirty(id, true)
}

// MarkClean clears the dirty flag, typically after population.
func (s *Store) MarkClean(id string) error {
	return s.setDirty(id, false)
}

func (s *Store) setDirty(id string, dirty bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.open[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	state.Dirty = dirty
	return nil
}

// Close removes the state of id.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	delete(s.open, id)
	return nil
}

// OpenIDs lists open dialogs sorted by id.
func (s *Store) OpenIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *State) snapshot() State {
	out := *s
	out.Record = cloneRecord(s.Record)
	return out
}

func cloneRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
