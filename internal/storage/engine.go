// Package storage owns the in-memory registry of live entities and persists
// it through a types.Store. The JSON file store lives here as well; other
// backends implement types.Store in their own packages.
package storage

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Engine is the Storage Engine: the registry of every live model keyed by
// compound key, plus the store it is flushed to.
type Engine struct {
	mu      sync.RWMutex
	store   types.Store
	objects map[string]types.Model
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger. A nil logger uses slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine with an empty registry. Call Reload to
// populate it from the store.
func NewEngine(store types.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		objects: make(map[string]types.Model),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// All returns every registered model, or only those of the given variants,
// ordered by compound key.
func (e *Engine) All(variants ...types.Variant) []types.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := e.sortedKeysLocked()
	out := make([]types.Model, 0, len(keys))
	for _, key := range keys {
		m := e.objects[key]
		if matches(m, variants) {
			out = append(out, m)
		}
	}
	return out
}

// Records returns All rendered as records. It is the read-only query
// offered to collaborators outside the console.
func (e *Engine) Records(variants ...types.Variant) []types.Record {
	models := e.All(variants...)
	out := make([]types.Record, len(models))
	for i, m := range models {
		out[i] = types.ToRecord(m)
	}
	return out
}

// Get returns the model registered under variant and id.
// Returns a *types.NotFoundError if the key is absent.
func (e *Engine) Get(v types.Variant, id string) (types.Model, error) {
	key := types.CompoundKey(v, id)

	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.objects[key]
	if !ok {
		return nil, &types.NotFoundError{Key: key}
	}
	return m, nil
}

// Count returns the number of registered models whose variant tag is tag.
// An undeclared tag counts zero.
func (e *Engine) Count(tag string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, m := range e.objects {
		if string(m.Variant()) == tag {
			n++
		}
	}
	return n
}

// Register inserts or overwrites m under its compound key. Idempotent.
func (e *Engine) Register(m types.Model) {
	if m == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects[types.Key(m)] = m
}

// Unregister removes m's compound key. Absent or nil models are a no-op.
func (e *Engine) Unregister(m types.Model) {
	if m == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.objects, types.Key(m))
}

// New constructs a fresh model of variant v and registers it. Nothing is
// persisted until Persist or Save.
func (e *Engine) New(v types.Variant) (types.Model, error) {
	m, err := types.New(v, e.now())
	if err != nil {
		return nil, err
	}
	e.Register(m)
	return m, nil
}

// Save refreshes m's updated_at and persists the whole registry.
func (e *Engine) Save(m types.Model) error {
	e.mu.Lock()
	m.Base().Touch(e.now())
	e.mu.Unlock()
	return e.Persist()
}

// Persist writes every registered model to the store.
func (e *Engine) Persist() error {
	e.mu.RLock()
	doc := make(types.Document, len(e.objects))
	for key, m := range e.objects {
		doc[key] = types.ToRecord(m)
	}
	e.mu.RUnlock()

	if err := e.store.Write(doc); err != nil {
		return fmt.Errorf("persist %s: %w", e.store.Location(), err)
	}
	e.logger.Debug("registry persisted", "location", e.store.Location(), "records", len(doc))
	return nil
}

// Reload replaces the registry with the store's contents. A store that was
// never written loads as empty. Any undecodable document, unknown variant
// tag, or key that does not match its record returns a
// *types.CorruptStoreError and leaves the registry untouched.
func (e *Engine) Reload() error {
	doc, err := e.store.Read()
	if err != nil {
		if types.IsCorrupt(err) {
			return err
		}
		return &types.CorruptStoreError{Err: fmt.Errorf("read %s: %w", e.store.Location(), err)}
	}

	now := e.now()
	objects := make(map[string]types.Model, len(doc))
	for key, rec := range doc {
		m, err := types.Reconstruct(rec, now)
		if err != nil {
			return &types.CorruptStoreError{Key: key, Err: err}
		}
		if got := types.Key(m); got != key {
			return &types.CorruptStoreError{
				Key: key,
				Err: fmt.Errorf("%w: record identifies as %q", types.ErrInvalidData, got),
			}
		}
		objects[key] = m
	}

	e.mu.Lock()
	e.objects = objects
	e.mu.Unlock()

	e.logger.Debug("registry reloaded", "location", e.store.Location(), "records", len(objects))
	return nil
}

// CitiesOf returns the cities whose state_id is stateID, ordered by key.
// This is the derived State.cities relation; it is never persisted.
func (e *Engine) CitiesOf(stateID string) []*types.City {
	var cities []*types.City
	for _, m := range e.All(types.VariantCity) {
		if c, ok := m.(*types.City); ok && c.StateID == stateID {
			cities = append(cities, c)
		}
	}
	return cities
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) sortedKeysLocked() []string {
	keys := make([]string, 0, len(e.objects))
	for key := range e.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func matches(m types.Model, variants []types.Variant) bool {
	if len(variants) == 0 {
		return true
	}
	for _, v := range variants {
		if m.Variant() == v {
			return true
		}
	}
	return false
}
