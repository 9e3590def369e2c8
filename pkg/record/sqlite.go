package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	type_tag   TEXT NOT NULL,
	id         TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (type_tag, id)
)`

// SQLiteStore persists records as JSON documents in a single SQLite table.
// Ids are UUID strings.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Lister = (*SQLiteStore)(nil)
)

// OpenSQLite opens dsn with the pure Go sqlite driver and creates the
// records table when missing. Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("record: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, typeTag string, data Record) (Record, error) {
	stored := data.Clone()
	if stored == nil {
		stored = Record{}
	}
	stored[IDField] = uuid.NewString()
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("record: encode %s: %w", typeTag, err)
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (type_tag, id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		typeTag, stored[IDField], string(payload), now, now)
	if err != nil {
		return nil, fmt.Errorf("record: insert %s: %w", typeTag, err)
	}
	return stored, nil
}

func (s *SQLiteStore) Update(ctx context.Context, typeTag string, id any, data Record) (Record, error) {
	stored := data.Clone()
	if stored == nil {
		stored = Record{}
	}
	key := Key(id)
	stored[IDField] = key
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("record: encode %s: %w", typeTag, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET payload = ?, updated_at = ? WHERE type_tag = ? AND id = ?`,
		string(payload), s.now().UTC().Format(time.RFC3339Nano), typeTag, key)
	if err != nil {
		return nil, fmt.Errorf("record: update %s/%s: %w", typeTag, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("record: update %s/%s: %w", typeTag, key, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, typeTag, key)
	}
	return stored, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, typeTag string, id any) (Record, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE type_tag = ? AND id = ?`, typeTag, Key(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("record: load %s/%s: %w", typeTag, Key(id), err)
	}
	out, err := decodeRecord(payload)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, typeTag string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE type_tag = ? ORDER BY created_at, id`, typeTag)
	if err != nil {
		return nil, fmt.Errorf("record: list %s: %w", typeTag, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("record: list %s: %w", typeTag, err)
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decodeRecord(payload string) (Record, error) {
	var out Record
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("record: decode payload: %w", err)
	}
	return out, nil
}
