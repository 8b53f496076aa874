// Package testutil provides helpers for testing code built on the Pylon
// client: a fake API server, canned JSON payloads, and test-scoped
// contexts.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture reads a canned payload from the package's testdata
// directory. The path is relative to testdata.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", path))
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// LoadFixtureString reads a fixture as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadJSONFixture reads a fixture and unmarshals it into T. Use it to
// decode captured API payloads into client types.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(LoadFixture(t, path), &v); err != nil {
		t.Fatalf("parse JSON fixture %s: %v", path, err)
	}
	return v
}

// WriteFixture writes a payload into the testdata directory, creating
// parent directories as needed. Useful for capturing real API responses
// as fixtures.
func WriteFixture(t *testing.T, path string, data []byte) {
	t.Helper()

	full := filepath.Join("testdata", path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

// WriteJSONFixture marshals v with indentation and writes it as a fixture.
func WriteJSONFixture(t *testing.T, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture %s: %v", path, err)
	}
	WriteFixture(t, path, data)
}

// TempFile writes content to a file in a fresh temp directory and
// returns its path. The file is removed when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file %s: %v", name, err)
	}
	return path
}

// TempFileString writes string content to a temp file. Handy for client
// config files in tests.
func TempFileString(t *testing.T, name, content string) string {
	t.Helper()
	return TempFile(t, name, []byte(content))
}
