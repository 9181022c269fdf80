// Package sqlite provides a SQLite-backed Store. Each partition is one
// table of (id TEXT PRIMARY KEY, ttl INTEGER, element BLOB), so rows
// survive restarts and the expiry sweep is a single DELETE.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/offcache/store"
	_ "modernc.org/sqlite"
)

// Store implements store.Store over a shared *sql.DB.
type Store struct {
	db      *sql.DB
	closeDB bool
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) a SQLite database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{db: db, closeDB: true}, nil
}

// Wrap adopts an existing database handle. The caller keeps ownership;
// Close becomes a no-op.
func Wrap(db *sql.DB) *Store { return &Store{db: db} }

// table maps a partition prefix to its table name. Prefixes are
// configuration, not user input, but they still become SQL identifiers,
// so anything outside [A-Za-z0-9_] is rejected at Init.
func table(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("partition prefix is required")
	}
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return "", fmt.Errorf("partition prefix %q contains invalid character %q", prefix, r)
		}
	}
	return `"cache_` + prefix + `"`, nil
}

func (s *Store) Init(ctx context.Context, prefix string) error {
	tbl, err := table(prefix)
	if err != nil {
		return err
	}
	// IF NOT EXISTS keeps repeated initialization idempotent.
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id      TEXT PRIMARY KEY,
			ttl     INTEGER NOT NULL,
			element BLOB
		)`, tbl))
	if err != nil {
		return fmt.Errorf("create partition %s: %w", prefix, err)
	}
	return nil
}

func (s *Store) GetMany(ctx context.Context, prefix string, ids []string) ([]store.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tbl, err := table(prefix)
	if err != nil {
		return nil, err
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, ttl, element FROM %s WHERE id IN (%s)`, tbl, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("select from partition %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.ID, &e.ExpiresAt, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func (s *Store) PutMany(ctx context.Context, prefix string, entries []store.Entry) []error {
	errs := make([]error, len(entries))
	tbl, err := table(prefix)
	if err != nil {
		for i := range errs {
			errs[i] = err
		}
		return errs
	}
	stmt := fmt.Sprintf(
		`INSERT INTO %s (id, ttl, element) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET ttl = excluded.ttl, element = excluded.element`, tbl)
	for i, e := range entries {
		if _, err := s.db.ExecContext(ctx, stmt, e.ID, e.ExpiresAt, e.Payload); err != nil {
			errs[i] = fmt.Errorf("upsert %q: %w", e.ID, err)
		}
	}
	return errs
}

func (s *Store) Delete(ctx context.Context, prefix string, id string) error {
	tbl, err := table(prefix)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, tbl), id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context, prefix string) error {
	tbl, err := table(prefix)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, tbl)); err != nil {
		return fmt.Errorf("clear partition %s: %w", prefix, err)
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, prefix string, now int64) error {
	tbl, err := table(prefix)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE ttl != ? AND ttl < ?`, tbl), store.NeverExpires, now)
	if err != nil {
		return fmt.Errorf("purge partition %s: %w", prefix, err)
	}
	return nil
}

// Close closes the database handle when this store opened it.
func (s *Store) Close(_ context.Context) error {
	if s == nil || s.db == nil || !s.closeDB {
		return nil
	}
	return s.db.Close()
}
