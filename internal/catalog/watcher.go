package catalog

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven catalog change.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the decision log directory dir and
// keeps the catalog current until ctx is cancelled. It calls cb (if non-nil)
// after each successful catalog mutation.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// entries and catalogs files that appeared under a new name.
func Watch(ctx context.Context, db Catalog, store storage.Provider, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	absDir := filepath.Join(store.Root(), filepath.FromSlash(dir))
	if err := w.Add(absDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	notify := func(kind, p string) {
		if cb != nil {
			cb(kind, p)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, dir, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !storage.IsMarkdown(name) || record.IsIndexName(name) {
				continue
			}
			rel := path.Join(dir, name)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if err := catalogFile(db, rel, data); err != nil {
					logger.Warn("watcher: catalog failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: catalogued", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if err := db.Delete(rel); err != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(EventDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new name arrives as
				// a Create when it stays inside the directory.
				if err := db.Delete(rel); err != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", err.Error()))
				} else {
					notify(EventDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes catalog entries without a file on disk and catalogs
// files whose checksum is unknown.
func reconcile(db Catalog, store storage.Provider, dir string, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := store.List(dir)
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		if !record.IsIndexName(path.Base(m.Path)) {
			disk[m.Path] = m.Checksum
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				notify(EventDeleted, p)
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, err := store.Read(p)
		if err != nil {
			continue
		}
		if err := catalogFile(db, p, data); err == nil {
			logger.Debug("reconcile: catalogued", slog.String("path", p))
			notify(EventCreated, p)
		}
	}
}
