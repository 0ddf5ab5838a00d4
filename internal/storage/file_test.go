package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

func TestFileStoreWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "file.json"))

	doc := types.Document{
		"User.1": types.Record{
			types.FieldClass: types.TextValue("User"),
			types.FieldID:    types.TextValue("1"),
			"email":          types.TextValue("a@b.c"),
		},
	}
	require.NoError(t, s.Write(doc))
	require.NoError(t, s.Write(doc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.json", entries[0].Name())
}

func TestFileStoreDocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	s := NewFileStore(path)

	doc := types.Document{
		"Place.p1": types.Record{
			types.FieldClass: types.TextValue("Place"),
			types.FieldID:    types.TextValue("p1"),
			"latitude":       types.FloatValue(12),
			"max_guest":      types.IntegerValue(4),
			"amenity_ids":    types.ListValue("a1"),
		},
	}
	require.NoError(t, s.Write(doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	rec := raw["Place.p1"]
	require.NotNil(t, rec)
	assert.Equal(t, "Place", rec["__class__"])
	assert.Equal(t, []any{"a1"}, rec["amenity_ids"])
	assert.True(t, strings.Contains(string(data), `"latitude":12.0`), string(data))
	assert.True(t, strings.Contains(string(data), `"max_guest":4`), string(data))
}

func TestFileStoreReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.json")
	s := NewFileStore(path)

	doc := types.Document{
		"State.s1": types.Record{
			types.FieldClass: types.TextValue("State"),
			types.FieldID:    types.TextValue("s1"),
			"name":           types.TextValue("Nevada"),
			"population":     types.IntegerValue(3104614),
		},
	}
	require.NoError(t, s.Write(doc))

	got, err := s.Read()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, doc["State.s1"].Equal(got["State.s1"]))
}

func TestFileStoreReadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	doc, err := s.Read()
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"no-dot": {"__class__": "User"}}`), 0o644))

	_, err := NewFileStore(path).Read()
	assert.True(t, types.IsCorrupt(err))
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestFileStoreEmptyObjectIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	doc, err := NewFileStore(path).Read()
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFileStoreWriteMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, NewFileStore(path).Write(types.Document{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
