package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store persists dictionary entries. It exists so curated dictionaries can
// grow across sessions without re-reading flat files; tables for pipeline
// use are materialized from it via FromStore.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite-backed dictionary store with WAL
// mode enabled.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS dict_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dict TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	variants TEXT NOT NULL DEFAULT '',
	UNIQUE(dict, key)
);

CREATE INDEX IF NOT EXISTS idx_dict_entries_dict ON dict_entries(dict);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Put inserts or replaces an entry in the named dictionary.
func (s *Store) Put(ctx context.Context, dict string, e Entry) error {
	if dict == "" || e.Key == "" {
		return fmt.Errorf("dictionary store: dict and key are required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO dict_entries (dict, key, value, category, variants)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(dict, key) DO UPDATE SET
	value = excluded.value,
	category = excluded.category,
	variants = excluded.variants`,
		dict, e.Key, e.Value, e.Category, strings.Join(e.Variants, "|"))
	return err
}

// PutAll stores every entry of the table under the table's name.
func (s *Store) PutAll(ctx context.Context, t *Table) error {
	for _, e := range t.Entries() {
		if err := s.Put(ctx, t.Name(), e); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns every entry of the named dictionary in insertion order.
func (s *Store) Entries(ctx context.Context, dict string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT key, value, category, variants
FROM dict_entries WHERE dict = ? ORDER BY id`, dict)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var variants string
		if err := rows.Scan(&e.Key, &e.Value, &e.Category, &variants); err != nil {
			return nil, err
		}
		if variants != "" {
			e.Variants = strings.Split(variants, "|")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Dicts returns the names of every stored dictionary.
func (s *Store) Dicts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT dict FROM dict_entries ORDER BY dict`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FromStore materializes the named dictionary into an in-memory table.
func FromStore(ctx context.Context, s *Store, dict string) (*Table, error) {
	entries, err := s.Entries(ctx, dict)
	if err != nil {
		return nil, err
	}
	t := NewTable(dict)
	t.entries = entries
	return t, nil
}
