package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps records in a flat map keyed "typeTag/id". Ids are
// sequential integers per type.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	nextID  map[string]int64
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		nextID:  make(map[string]int64),
	}
}

func memoryKey(typeTag string, id any) string {
	return typeTag + "/" + Key(id)
}

func (s *MemoryStore) Create(ctx context.Context, typeTag string, data Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID[typeTag]++
	stored := data.Clone()
	if stored == nil {
		stored = Record{}
	}
	stored[IDField] = s.nextID[typeTag]
	s.records[memoryKey(typeTag, stored[IDField])] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, typeTag string, id any, data Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(typeTag, id)
	existing, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	stored := data.Clone()
	if stored == nil {
		stored = Record{}
	}
	stored[IDField] = existing[IDField]
	s.records[key] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, typeTag string, id any) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.records[memoryKey(typeTag, id)]
	if !ok {
		return nil, false, nil
	}
	return stored.Clone(), true, nil
}

// Put stores data under its own id without assigning a new one. Used to seed
// fixtures.
func (s *MemoryStore) Put(typeTag string, data Record) error {
	id, ok := ID(data)
	if !ok {
		return fmt.Errorf("record: put %s: missing id", typeTag)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memoryKey(typeTag, id)] = data.Clone()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, typeTag string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := typeTag + "/"
	keys := make([]string, 0)
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.records[key].Clone())
	}
	return out, nil
}
