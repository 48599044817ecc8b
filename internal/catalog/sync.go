package catalog

import (
	"log/slog"
	"path"

	"github.com/starford/adrkit/internal/parser"
	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/storage"
)

// Sync brings the catalog up to date with the records in dir:
//   - new/changed records are parsed and upserted
//   - records removed from disk are deleted from the catalog
//
// Index files are not records and are skipped.
func Sync(db Catalog, store storage.Provider, dir string, logger *slog.Logger) error {
	metas, err := store.List(dir)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if record.IsIndexName(path.Base(m.Path)) {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := catalogFile(db, m.Path, data); err != nil {
			logger.Warn("sync: catalog failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: catalogued", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// catalogFile parses data and upserts it into the catalog.
func catalogFile(db Catalog, p string, data []byte) error {
	rec, err := parser.Record(p, data)
	if err != nil {
		return err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return db.Upsert(rec, res.Body)
}

// Refresher returns a callback that re-catalogs a record after it has been
// written. Its signature matches record.Hook so record operations keep the
// catalog current without waiting for the watcher.
func Refresher(db Catalog, store storage.Provider, logger *slog.Logger) func(kind, path string) {
	return func(kind, p string) {
		if !storage.IsMarkdown(p) || record.IsIndexName(path.Base(p)) {
			return
		}
		if kind == EventDeleted {
			if err := db.Delete(p); err != nil {
				logger.Warn("refresh: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			}
			return
		}
		data, err := store.Read(p)
		if err != nil {
			logger.Warn("refresh: read failed", slog.String("path", p), slog.String("error", err.Error()))
			return
		}
		if err := catalogFile(db, p, data); err != nil {
			logger.Warn("refresh: catalog failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
