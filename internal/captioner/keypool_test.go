package captioner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewKeyPoolDropsBlankKeys(t *testing.T) {
	pool, err := NewKeyPool([]string{" key-1 ", "", "key-2", "  "})
	if err != nil {
		t.Fatalf("NewKeyPool returned error: %v", err)
	}
	if pool.Size() != 2 {
		t.Fatalf("expected 2 keys, got %d", pool.Size())
	}
	if pool.Current() != "key-1" {
		t.Fatalf("expected trimmed first key, got %q", pool.Current())
	}
}

func TestNewKeyPoolRequiresKeys(t *testing.T) {
	if _, err := NewKeyPool([]string{"", "  "}); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestKeyPoolRotateCyclesAndReportsExhaustion(t *testing.T) {
	pool, err := NewKeyPool([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewKeyPool returned error: %v", err)
	}
	if key, ok := pool.Rotate(); !ok || key != "b" {
		t.Fatalf("expected rotation to b, got %q ok=%v", key, ok)
	}
	if key, ok := pool.Rotate(); !ok || key != "c" {
		t.Fatalf("expected rotation to c, got %q ok=%v", key, ok)
	}
	key, ok := pool.Rotate()
	if ok {
		t.Fatal("expected exhaustion after full cycle")
	}
	if key != "a" {
		t.Fatalf("expected wrap back to a, got %q", key)
	}
}

func TestKeyPoolRotateSingleKey(t *testing.T) {
	pool, err := NewKeyPool([]string{"solo"})
	if err != nil {
		t.Fatalf("NewKeyPool returned error: %v", err)
	}
	key, ok := pool.Rotate()
	if ok {
		t.Fatal("single-key pool should report exhaustion immediately")
	}
	if key != "solo" {
		t.Fatalf("expected solo key, got %q", key)
	}
}

func TestLoadKeyFileBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	if err := os.WriteFile(path, []byte(`["key-1","key-2"]`), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	keys, err := LoadKeyFile(path)
	if err != nil {
		t.Fatalf("LoadKeyFile returned error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "key-1" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestLoadKeyFileWrappedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	if err := os.WriteFile(path, []byte(`{"keys":["key-1"]}`), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	keys, err := LoadKeyFile(path)
	if err != nil {
		t.Fatalf("LoadKeyFile returned error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "key-1" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestLoadKeyFileRejectsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	if err := os.WriteFile(path, []byte(`{"other":true}`), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	if _, err := LoadKeyFile(path); err == nil {
		t.Fatal("expected error for key file without keys")
	}
}
