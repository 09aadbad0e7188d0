// Package testutil provides reusable fixtures for bundle tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestBundle is a temporary bundle directory built file by file.
type TestBundle struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestBundle creates a bundle builder. Call Build to materialize it.
func NewTestBundle(t *testing.T) *TestBundle {
	t.Helper()
	return &TestBundle{
		t:     t,
		files: make(map[string]string),
	}
}

// WithManifest sets the manifest.yaml content.
func (b *TestBundle) WithManifest(yaml string) *TestBundle {
	return b.WithFile("manifest.yaml", yaml)
}

// WithFile adds a file, path relative to the bundle root.
func (b *TestBundle) WithFile(path, content string) *TestBundle {
	b.files[path] = content
	return b
}

// Build creates the bundle directory and every configured file.
func (b *TestBundle) Build() *TestBundle {
	b.t.Helper()
	b.Path = b.t.TempDir()
	for path, content := range b.files {
		b.writeFile(path, content)
	}
	return b
}

func (b *TestBundle) writeFile(relPath, content string) {
	b.t.Helper()
	fullPath := filepath.Join(b.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		b.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		b.t.Fatalf("failed to write %s: %v", relPath, err)
	}
}

// ReadFile returns a file's content, failing the test if unreadable.
func (b *TestBundle) ReadFile(relPath string) string {
	b.t.Helper()
	data, err := os.ReadFile(filepath.Join(b.Path, relPath))
	if err != nil {
		b.t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

// WriteFile writes a file into an already built bundle.
func (b *TestBundle) WriteFile(relPath, content string) {
	b.t.Helper()
	b.writeFile(relPath, content)
}

// AssertFileExists fails the test if the file does not exist.
func (b *TestBundle) AssertFileExists(relPath string) {
	b.t.Helper()
	if _, err := os.Stat(filepath.Join(b.Path, relPath)); os.IsNotExist(err) {
		b.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (b *TestBundle) AssertFileNotExists(relPath string) {
	b.t.Helper()
	if _, err := os.Stat(filepath.Join(b.Path, relPath)); err == nil {
		b.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file lacks the substring.
func (b *TestBundle) AssertFileContains(relPath, substr string) {
	b.t.Helper()
	content := b.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		b.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// Tree returns every file in the bundle with its content, for
// before/after comparisons of whole-directory state.
func (b *TestBundle) Tree() map[string]string {
	b.t.Helper()
	out := make(map[string]string)
	err := filepath.Walk(b.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(b.Path, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		b.t.Fatalf("failed to walk bundle: %v", err)
	}
	return out
}
