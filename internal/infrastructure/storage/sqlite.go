// Package storage persists the application's named JSON snapshots in a
// local SQLite database. Each snapshot is written whole on every mutation
// and read back once at startup.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/hsboy89/NewStep/internal/ports"
)

// SnapshotStore implements ports.SnapshotStore on SQLite.
type SnapshotStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// New opens (creating if needed) the snapshot database at path.
func New(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SnapshotStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Load reads the named snapshot into v; ok=false means no snapshot of that
// name has been written yet.
func (s *SnapshotStore) Load(ctx context.Context, name string, v any) (bool, error) {
	query, args, err := s.builder.
		Select("data").
		From("snapshots").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var data string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot %s: %w", name, err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return true, nil
}

// Save upserts the named snapshot with the JSON encoding of v.
func (s *SnapshotStore) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}

	query, args, err := s.builder.
		Insert("snapshots").
		Columns("name", "data", "updated_at").
		Values(name, string(data), time.Now().Unix()).
		Suffix(`ON CONFLICT (name) DO UPDATE
			SET data = excluded.data,
			    updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
