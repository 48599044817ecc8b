package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/adrkit/internal/storage"
)

func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "adr"), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return filepath.Join(root, "adr"), store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func catalogued(db *DB, p string) bool {
	sums, _ := db.AllChecksums()
	return sums[p] != ""
}

func TestWatcher_NewRecordCatalogued(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go Watch(ctx, db, store, "adr", discardLogger(), func(kind, p string) {
		mu.Lock()
		events = append(events, kind+":"+p)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "0001-new.md"), []byte("# New\n\n* Status: proposed\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "README.md"), []byte("# ADR Log\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return catalogued(db, "adr/0001-new.md")
	}, "new record not catalogued by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:adr/0001-new.md" {
				return true
			}
		}
		return false
	}, "expected created:adr/0001-new.md callback")

	if catalogued(db, "adr/README.md") {
		t.Error("index file catalogued")
	}
}

func TestWatcher_DeleteRemovesFromCatalog(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "0001-del.md"), []byte("# Delete Me\n"), 0o644)
	if err := Sync(db, store, "adr", discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !catalogued(db, "adr/0001-del.md") {
		t.Fatal("precondition: record should be catalogued")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, "adr", discardLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(dir, "0001-del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !catalogued(db, "adr/0001-del.md")
	}, "deleted record still catalogued")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "0001-old.md"), []byte("# Rename\n"), 0o644)
	if err := Sync(db, store, "adr", discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, "adr", discardLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(dir, "0001-old.md"), filepath.Join(dir, "0001-renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !catalogued(db, "adr/0001-old.md") && catalogued(db, "adr/0001-renamed.md")
	}, "rename reconciliation failed: old path should be removed and new path catalogued")
}
