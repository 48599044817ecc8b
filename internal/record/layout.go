package record

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/storage"
)

// DefaultDir is used when no candidate directory exists yet.
const DefaultDir = "adr"

// CandidateDirs are probed in order to find an existing decision log.
var CandidateDirs = []string{"adr", "docs/adr", "docs/adrs", "docs/decisions", "decisions"}

// IndexNames are probed in order to find an existing index inside the
// decision log directory.
var IndexNames = []string{"README.md", "index.md"}

// ResolveDir returns the repo-relative decision log directory: dir when set,
// otherwise the first existing candidate, otherwise DefaultDir.
func ResolveDir(store storage.Provider, dir string) (string, error) {
	if dir != "" {
		rel, err := store.Rel(dir)
		if err != nil {
			return "", fmt.Errorf("record: dir: %w", err)
		}
		return rel, nil
	}
	for _, c := range CandidateDirs {
		ok, err := store.Exists(c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return DefaultDir, nil
}

// ResolveIndex returns the repo-relative index file: indexFile when set,
// otherwise the first existing name from IndexNames in dir, otherwise
// dir/README.md.
func ResolveIndex(store storage.Provider, dir, indexFile string) (string, error) {
	if indexFile != "" {
		rel, err := store.Rel(indexFile)
		if err != nil {
			return "", fmt.Errorf("record: index file: %w", err)
		}
		return rel, nil
	}
	for _, name := range IndexNames {
		p := path.Join(dir, name)
		ok, err := store.Exists(p)
		if err != nil {
			return "", err
		}
		if ok {
			return p, nil
		}
	}
	return path.Join(dir, IndexNames[0]), nil
}

// IsIndexName reports whether name is one of the index file names.
func IsIndexName(name string) bool {
	for _, n := range IndexNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// linkFrom returns the slash-separated path to target as seen from the
// directory holding from.
func linkFrom(from, target string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(from)), filepath.FromSlash(target))
	if err != nil {
		return "", fmt.Errorf("record: link %s -> %s: %w", from, target, err)
	}
	return filepath.ToSlash(rel), nil
}

// ensureDir creates dir unless it is missing and creation is disabled.
func ensureDir(store storage.Provider, dir string, create bool) error {
	ok, err := store.Exists(dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !create {
		return fmt.Errorf("record: ADR directory does not exist: %s: %w", dir, apperr.ErrPathNotFound)
	}
	return store.MkdirAll(dir)
}
