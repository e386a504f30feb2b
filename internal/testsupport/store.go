package testsupport

import (
	"context"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord inserts an enabled record with the provided name, path, and size.
func SeedRecord(t testing.TB, store *catalog.Store, name, path string, size int64) *catalog.Record {
	t.Helper()

	record, err := store.Create(context.Background(), &catalog.Record{
		Name:     name,
		FilePath: path,
		FileSize: size,
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return record
}
