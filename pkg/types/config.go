package types

import (
	"errors"
	"path/filepath"
)

// Config holds backend selection and file location for the object store.
type Config struct {
	Backend  string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	FileName string `json:"file_name" yaml:"file_name,omitempty" mapstructure:"file_name"`
}

// Supported backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Default file names per backend.
const (
	DefaultJSONFile   = "file.json"
	DefaultSQLiteFile = "file.db"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSON:   true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// StorePath returns the persisted file path: FileName (or the backend's
// default name) inside DataDir (or the current directory).
func (c Config) StorePath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	name := c.FileName
	if name == "" {
		name = DefaultJSONFile
		if c.Backend == BackendSQLite {
			name = DefaultSQLiteFile
		}
	}
	return filepath.Join(dir, name)
}
