// Package integration drives the built console binary end to end.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

var (
	// consoleBin is the path to the built console binary.
	consoleBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetConsoleBin sets the path to the console binary (called from TestMain).
func SetConsoleBin(path string) {
	consoleBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated environment with its own config and data
// directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment using backend.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build console: %v", buildErr)
	}
	if consoleBin == "" {
		t.Fatal("console binary not built (consoleBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "backend: " + backend + "\ndata_dir: " + dataDir + "\nlog_level: warn\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		DataDir: dataDir,
	}
}

// CmdResult holds the result of a console execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Lines returns the non-empty stdout lines.
func (r CmdResult) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// RunConsole executes the console with stdin fed from the given lines and
// the given extra arguments.
func (e *TestEnv) RunConsole(stdin []string, args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(consoleBin, allArgs...)
	cmd.Dir = e.TempDir
	cmd.Env = append(os.Environ(), "HBNB_CONFIG_DIR=", "HBNB_DATA_DIR=", "HBNB_BACKEND=", "HBNB_FILE_NAME=")
	if len(stdin) > 0 {
		cmd.Stdin = strings.NewReader(strings.Join(stdin, "\n") + "\n")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run console: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunConsole runs the console and fails the test on a non-zero exit.
func (e *TestEnv) MustRunConsole(stdin ...string) CmdResult {
	e.t.Helper()
	result := e.RunConsole(stdin)
	if result.ExitCode != 0 {
		e.t.Fatalf("console %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			stdin, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ReadObjectFile parses the JSON object file into raw records.
func (e *TestEnv) ReadObjectFile() map[string]map[string]any {
	e.t.Helper()
	path := filepath.Join(e.DataDir, "file.json")
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("failed to read %s: %v", path, err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		e.t.Fatalf("failed to parse %s: %v", path, err)
	}
	return doc
}
