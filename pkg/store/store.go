// Package store selects the persistence backend named by a types.Config and
// exposes the read-only query used by collaborators outside the console.
package store

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/hbnb/internal/sqlite"
	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Open validates cfg and returns the store for its backend. The JSON backend
// touches nothing until the first write; the SQLite backend creates its
// database file immediately.
//
// Example:
//
//	s, err := store.Open(types.Config{
//	    Backend: types.BackendJSON,
//	    DataDir: ".",
//	})
//	defer s.Close()
func Open(cfg types.Config) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	path := cfg.StorePath()
	switch cfg.Backend {
	case types.BackendSQLite:
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return storage.NewFileStore(path), nil
	}
}

// OpenEngine opens the configured store and loads it into a new engine.
// The caller owns the engine and must Close it.
func OpenEngine(cfg types.Config, logger *slog.Logger) (*storage.Engine, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	e := storage.NewEngine(s, storage.WithLogger(logger))
	if err := e.Reload(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Reader is the only surface offered to collaborators such as web routes:
// a read-only listing of records, optionally filtered by variant.
type Reader interface {
	All(variants ...types.Variant) []types.Record
}

// snapshot is a Reader over records loaded once.
type snapshot struct {
	engine *storage.Engine
}

func (s snapshot) All(variants ...types.Variant) []types.Record {
	return s.engine.Records(variants...)
}

// NewReader loads the configured store once and returns a read-only view of
// it. The underlying store is closed before NewReader returns.
func NewReader(cfg types.Config) (Reader, error) {
	e, err := OpenEngine(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", cfg.StorePath(), err)
	}
	return snapshot{engine: e}, nil
}
