package storage

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

//go:embed schema.json
var documentSchemaJSON string

var (
	documentSchemaOnce sync.Once
	documentSchema     *gojsonschema.Schema
	documentSchemaErr  error
)

// loadDocumentSchema compiles the embedded schema once.
func loadDocumentSchema() (*gojsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		documentSchema, documentSchemaErr = gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(documentSchemaJSON))
	})
	return documentSchema, documentSchemaErr
}

// filePerm is the mode of the persisted file.
const filePerm os.FileMode = 0o644

// FileStore persists the document as a single JSON object in one file.
type FileStore struct {
	path string
}

// NewFileStore returns a store for the JSON file at path. The file is not
// touched until Read or Write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

// Read loads and validates the document. A missing file is an empty
// document.
func (s *FileStore) Read() (types.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return types.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	if err := validateDocument(data); err != nil {
		return nil, &types.CorruptStoreError{Err: fmt.Errorf("%s: %w", s.path, err)}
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.CorruptStoreError{Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	if doc == nil {
		doc = types.Document{}
	}
	return doc, nil
}

// Write encodes the document and replaces the file atomically.
func (s *FileStore) Write(doc types.Document) error {
	if doc == nil {
		doc = types.Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Close is a no-op; the file is only open during Read and Write.
func (s *FileStore) Close() error {
	return nil
}

// validateDocument checks the raw bytes against the embedded schema.
// Invalid JSON is reported the same way as a schema violation.
func validateDocument(data []byte) error {
	schema, err := loadDocumentSchema()
	if err != nil {
		return fmt.Errorf("compiling document schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("%w: %s", types.ErrInvalidData, strings.Join(msgs, "; "))
	}
	return nil
}

// writeFileAtomic writes data using the temp-file, fsync, rename pattern so
// a reader never observes a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".hbnb-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
