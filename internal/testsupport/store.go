package testsupport

import (
	"context"
	"testing"

	"avconverter/internal/config"
	"avconverter/internal/queue"
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

// NewBatch creates a batch for tests using the provided store.
func NewBatch(t testing.TB, store *queue.Store, engine, targetFormat, outputDir string) *queue.Batch {
	t.Helper()

	batch, err := store.NewBatch(context.Background(), engine, targetFormat, outputDir)
	if err != nil {
		t.Fatalf("store.NewBatch: %v", err)
	}
	return batch
}

// NewItem adds a pending conversion item to the batch for tests.
func NewItem(t testing.TB, store *queue.Store, batchID, sourcePath, targetFormat string) *queue.Item {
	t.Helper()

	item, err := store.AddItem(context.Background(), batchID, sourcePath, targetFormat)
	if err != nil {
		t.Fatalf("store.AddItem: %v", err)
	}
	return item
}
