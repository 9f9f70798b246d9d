package testsupport

import (
	"context"
	"testing"

	"reelpress/internal/config"
	"reelpress/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewFile enqueues a video file for tests using the provided store.
func NewFile(t testing.TB, store *queue.Store, sourcePath string) *queue.Item {
	t.Helper()

	item, err := store.NewFile(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("store.NewFile: %v", err)
	}
	return item
}
