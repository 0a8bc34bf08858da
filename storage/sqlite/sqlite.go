// Package sqlite provides a storage.Storage persisted in a SQLite file, so a
// cache survives process restarts. It uses the pure Go modernc.org/sqlite
// driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/mercapi-go/storage"
	_ "modernc.org/sqlite"
)

// Schema for the cache table. Open applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	stored_at INTEGER NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_exp ON cache_entries(expires_at) WHERE expires_at IS NOT NULL;
`

// Storage implements storage.Storage on a SQLite database.
type Storage struct {
	db     *sql.DB
	ownsDB bool
}

// Open opens (creating if needed) the database at path. ":memory:" keeps the
// cache in process memory.
func Open(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// New uses an already opened database. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB) (*Storage, error) {
	if db == nil {
		return nil, errors.New("sqlite database is required")
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Get returns the entry stored under key, if live.
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Entry, error) {
	k := storage.Prefix(storage.Resolve(opts...).Namespace) + key

	var (
		payload   []byte
		storedAt  int64
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, stored_at, expires_at FROM cache_entries WHERE key = ?`, k,
	).Scan(&payload, &storedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", k, err)
	}

	e := &storage.Entry{Payload: payload, StoredAt: time.Unix(0, storedAt)}
	if expiresAt.Valid {
		exp := time.Unix(0, expiresAt.Int64)
		e.ExpiresAt = &exp
	}
	if e.IsExpired() {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, k); err != nil {
			return nil, fmt.Errorf("failed to drop expired key %s: %w", k, err)
		}
		return nil, nil
	}
	return e, nil
}

// Set stores payload under key, replacing any previous entry.
func (s *Storage) Set(ctx context.Context, key string, payload []byte, opts ...storage.Option) error {
	o := storage.Resolve(opts...)
	k := storage.Prefix(o.Namespace) + key

	now := time.Now()
	var expiresAt sql.NullInt64
	if o.TTL != nil {
		expiresAt = sql.NullInt64{Int64: now.Add(*o.TTL).UnixNano(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, payload, stored_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
		k, payload, now.UnixNano(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", k, err)
	}
	return nil
}

// Delete removes one key or every key of a namespace.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	o := storage.Resolve(opts...)
	prefix := storage.Prefix(o.Namespace)

	if o.Key != nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, prefix+*o.Key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	}
	// substr avoids LIKE wildcards in endpoint names. It counts characters,
	// so the length comes from SQLite as well.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE substr(key, 1, length(?)) = ?`, prefix, prefix,
	); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", prefix, err)
	}
	return nil
}

// Purge removes every expired entry and reports how many were dropped.
func (s *Storage) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database if Open created it.
func (s *Storage) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var _ storage.Storage = (*Storage)(nil)
