// Package sqlite implements types.Store on a single-file SQLite database.
// It stores the same records as the JSON file backend, one row per compound
// key, and replaces the whole set inside one transaction on every write.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Store is a types.Store backed by SQLite.
type Store struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single connection keeps the write transaction and reads serialized.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &Store{path: path, db: db}, nil
}

// Location returns the database path.
func (s *Store) Location() string {
	return s.path
}

// Read returns every stored record keyed by compound key.
func (s *Store) Read() (types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT object_key, record FROM objects ORDER BY object_key")
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	doc := types.Document{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &types.CorruptStoreError{Key: key, Err: fmt.Errorf("%w: %v", types.ErrInvalidData, err)}
		}
		if rec == nil {
			return nil, &types.CorruptStoreError{Key: key, Err: fmt.Errorf("%w: empty record", types.ErrInvalidData)}
		}
		doc[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	return doc, nil
}

// Write replaces every row with the document's records in one transaction.
func (s *Store) Write(doc types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning write transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM objects"); err != nil {
		return fmt.Errorf("clearing objects: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO objects (object_key, variant, record) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for key, rec := range doc {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if _, err := stmt.Exec(key, rec.Variant(), string(raw)); err != nil {
			return fmt.Errorf("inserting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write transaction: %w", err)
	}
	return nil
}

// Close closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
