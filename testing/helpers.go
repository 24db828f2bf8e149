package testing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempDir creates a temporary directory for testing and registers cleanup
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "caffeine-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// WriteFile creates a test file with content
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	WriteBytes(t, path, []byte(content))
}

// WriteBytes creates a test file with binary content
func WriteBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should not exist: %s", path)
	}
}

// AssertFileBytes checks file content matches expected bytes exactly
func AssertFileBytes(t *testing.T, path string, expected []byte) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	if !bytes.Equal(content, expected) {
		t.Errorf("file content mismatch for %s:\nwant: %q\ngot:  %q", path, expected, content)
	}
}

// AssertDirEntries checks the exact set of names inside a directory
func AssertDirEntries(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir %s: %v", dir, err)
	}

	got := make(map[string]bool, len(entries))
	for _, e := range entries {
		got[e.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("%s: missing entry %q (have %v)", dir, name, names(entries))
		}
		delete(got, name)
	}
	for name := range got {
		t.Errorf("%s: unexpected entry %q", dir, name)
	}
}

func names(entries []os.DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

// AssertNoError checks that no error occurred
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// AssertEqual checks if two values are equal
func AssertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// AssertContains checks if a string contains a substring
func AssertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: string %q does not contain %q", msg, s, substr)
	}
}
