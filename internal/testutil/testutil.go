// Package testutil provides shared test helpers for setting up repositories
// and catalogs.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically
// closed.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRepo creates a temporary repository holding files (path -> content)
// and returns its root with a storage.Provider.
func TestRepo(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	for p, content := range files {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return root, store
}
