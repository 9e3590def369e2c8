package record

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// IDField is the key holding a record's identifier.
const IDField = "id"

// ErrNotFound is returned when updating or loading a missing record.
var ErrNotFound = errors.New("record: not found")

// Record is a flat key/value document.
type Record map[string]any

// ID returns the record identifier. ok is false only when the key is absent
// or nil; zero values such as 0 or "" are present ids.
func ID(r map[string]any) (id any, ok bool) {
	if r == nil {
		return nil, false
	}
	id, ok = r[IDField]
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// IsZeroID reports whether a present id is its type's zero value.
func IsZeroID(id any) bool {
	if id == nil {
		return false
	}
	return reflect.ValueOf(id).IsZero()
}

// Key normalises an id into a string so 7, int64(7), 7.0 and "7" address the
// same record.
func Key(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Key(float64(v))
	default:
		return fmt.Sprint(v)
	}
}

// Store is the record persistence collaborator. It owns ids: Create assigns
// one and returns the stored record.
type Store interface {
	Create(ctx context.Context, typeTag string, data Record) (Record, error)
	Update(ctx context.Context, typeTag string, id any, data Record) (Record, error)
	GetByID(ctx context.Context, typeTag string, id any) (Record, bool, error)
}

// Lister is implemented by stores that can enumerate a type.
type Lister interface {
	List(ctx context.Context, typeTag string) ([]Record, error)
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
