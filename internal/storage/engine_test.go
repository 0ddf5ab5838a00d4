package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

var epoch = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

// memStore is an in-memory types.Store for engine tests.
type memStore struct {
	doc      types.Document
	writeErr error
	readErr  error
	writes   int
}

func (s *memStore) Read() (types.Document, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.doc == nil {
		return types.Document{}, nil
	}
	return s.doc, nil
}

func (s *memStore) Write(doc types.Document) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.doc = doc
	s.writes++
	return nil
}

func (s *memStore) Location() string { return "memory" }
func (s *memStore) Close() error     { return nil }

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.json")
	return NewEngine(NewFileStore(path), WithClock(stepClock(epoch, time.Second))), path
}

func TestReloadMissingFileIsEmpty(t *testing.T) {
	e, path := newTestEngine(t)

	require.NoError(t, e.Reload())
	assert.Empty(t, e.All())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "reload must not create the file")
}

func TestPersistReloadRoundTrip(t *testing.T) {
	e, path := newTestEngine(t)
	require.NoError(t, e.Reload())

	state, err := e.New(types.VariantState)
	require.NoError(t, err)
	state.(*types.State).Name = "California"
	require.NoError(t, e.Persist())

	fresh := NewEngine(NewFileStore(path), WithClock(stepClock(epoch.Add(time.Hour), time.Second)))
	require.NoError(t, fresh.Reload())

	all := fresh.All()
	require.Len(t, all, 1)
	assert.Equal(t, types.Key(state), types.Key(all[0]))
	assert.True(t, types.ToRecord(state).Equal(types.ToRecord(all[0])))
}

func TestReloadDoesNotDoubleCount(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.New(types.VariantUser)
	require.NoError(t, err)
	_, err = e.New(types.VariantUser)
	require.NoError(t, err)
	require.NoError(t, e.Persist())

	require.NoError(t, e.Reload())
	require.NoError(t, e.Reload())
	assert.Equal(t, 2, e.Count("User"))
	assert.Len(t, e.All(), 2)
}

func TestAllFiltersAndOrders(t *testing.T) {
	e := NewEngine(&memStore{}, WithClock(stepClock(epoch, time.Second)))
	for _, v := range []types.Variant{types.VariantUser, types.VariantCity, types.VariantUser, types.VariantReview} {
		_, err := e.New(v)
		require.NoError(t, err)
	}

	all := e.All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, types.Key(all[i-1]), types.Key(all[i]))
	}

	users := e.All(types.VariantUser)
	assert.Len(t, users, 2)
	for _, m := range users {
		assert.Equal(t, types.VariantUser, m.Variant())
	}

	assert.Len(t, e.All(types.VariantCity, types.VariantReview), 2)
	assert.Empty(t, e.All(types.VariantPlace))
	assert.Len(t, e.Records(types.VariantUser), 2)
}

func TestRegisterIdempotentAndUnregisterNoop(t *testing.T) {
	e := NewEngine(&memStore{})
	m, err := types.New(types.VariantAmenity, epoch)
	require.NoError(t, err)

	e.Register(m)
	e.Register(m)
	assert.Len(t, e.All(), 1)

	e.Unregister(m)
	assert.Empty(t, e.All())

	e.Unregister(m)
	e.Unregister(nil)
	assert.Empty(t, e.All())
}

func TestGet(t *testing.T) {
	e := NewEngine(&memStore{})
	m, err := e.New(types.VariantReview)
	require.NoError(t, err)

	got, err := e.Get(types.VariantReview, m.Base().ID)
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = e.Get(types.VariantUser, m.Base().ID)
	assert.True(t, types.IsNotFound(err))
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "User."+m.Base().ID, nf.Key)
}

func TestCountUnknownTagIsZero(t *testing.T) {
	e := NewEngine(&memStore{})
	_, err := e.New(types.VariantCity)
	require.NoError(t, err)

	assert.Equal(t, 1, e.Count("City"))
	assert.Equal(t, 0, e.Count("Castle"))
}

func TestSaveStrictlyAdvancesUpdatedAt(t *testing.T) {
	store := &memStore{}
	frozen := func() time.Time { return epoch }
	e := NewEngine(store, WithClock(frozen))

	m, err := e.New(types.VariantBaseModel)
	require.NoError(t, err)
	b := m.Base()

	for i := 0; i < 3; i++ {
		before := b.UpdatedAt
		require.NoError(t, e.Save(m))
		assert.True(t, b.UpdatedAt.After(before))
		assert.False(t, b.UpdatedAt.Before(b.CreatedAt))
	}
	assert.Equal(t, 3, store.writes)
}

func TestPersistErrorPropagates(t *testing.T) {
	diskFull := errors.New("no space left on device")
	e := NewEngine(&memStore{writeErr: diskFull})
	m, err := e.New(types.VariantUser)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Persist(), diskFull)
	assert.ErrorIs(t, e.Save(m), diskFull)
}

func TestReloadCorruptStates(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed JSON",
			content: `{"User.1": {`,
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "empty file",
			content: ``,
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "top level array",
			content: `[]`,
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "unknown variant tag",
			content: `{"Dragon.1": {"__class__": "Dragon", "id": "1"}}`,
			wantErr: types.ErrUnknownVariant,
		},
		{
			name:    "missing variant tag",
			content: `{"User.1": {"id": "1"}}`,
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "key does not match record",
			content: `{"User.1": {"__class__": "City", "id": "1"}}`,
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "boolean attribute",
			content: `{"User.1": {"__class__": "User", "id": "1", "admin": true}}`,
			wantErr: types.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, path := newTestEngine(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			err := e.Reload()
			require.Error(t, err)
			assert.True(t, types.IsCorrupt(err), "want corrupt store error, got %v", err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReloadFailureKeepsRegistry(t *testing.T) {
	store := &memStore{}
	e := NewEngine(store)
	_, err := e.New(types.VariantUser)
	require.NoError(t, err)

	store.doc = types.Document{
		"Ghost.1": types.Record{types.FieldClass: types.TextValue("Ghost")},
	}
	require.Error(t, e.Reload())
	assert.Len(t, e.All(), 1)
}

func TestReloadReadErrorIsCorrupt(t *testing.T) {
	e := NewEngine(&memStore{readErr: os.ErrPermission})
	err := e.Reload()
	assert.True(t, types.IsCorrupt(err))
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestCitiesOf(t *testing.T) {
	e := NewEngine(&memStore{}, WithClock(stepClock(epoch, time.Second)))
	state, err := e.New(types.VariantState)
	require.NoError(t, err)
	other, err := e.New(types.VariantState)
	require.NoError(t, err)

	for _, sid := range []string{state.Base().ID, other.Base().ID, state.Base().ID} {
		c, err := e.New(types.VariantCity)
		require.NoError(t, err)
		c.(*types.City).StateID = sid
	}

	cities := e.CitiesOf(state.Base().ID)
	assert.Len(t, cities, 2)
	for _, c := range cities {
		assert.Equal(t, state.Base().ID, c.StateID)
	}

	_, persisted := types.ToRecord(state)["cities"]
	assert.False(t, persisted)
}
