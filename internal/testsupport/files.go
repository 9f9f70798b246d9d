package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size bytes of filler so tests can stand in
// for media files without shipping binary fixtures. Parent directories are
// created as needed; a size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x5a}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
