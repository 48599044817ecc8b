package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/checksum"
	"github.com/starford/adrkit/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the repository root
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: repo root does not exist: %s: %w", abs, apperr.ErrPathNotFound)
		}
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s: %w", abs, apperr.ErrPathNotFound)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute repository root.
func (f *FS) Root() string { return f.root }

// safePath resolves a path against the repository root and rejects any
// result that escapes it. Absolute paths are accepted when they are inside
// the root.
func (f *FS) safePath(p string) (string, error) {
	if p == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	var abs string
	if filepath.IsAbs(cleaned) {
		abs = cleaned
	} else {
		abs = filepath.Join(f.root, cleaned)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes repo root: %s: %w", p, apperr.ErrInvalidArgument)
	}
	return abs, nil
}

// Rel returns p relative to the root with forward slashes.
func (f *FS) Rel(p string) (string, error) {
	abs, err := f.safePath(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", fmt.Errorf("storage: rel %s: %w", p, err)
	}
	return filepath.ToSlash(rel), nil
}

// Names returns regular file names directly inside dir, in directory order
// (sorted by name). A missing directory yields no names.
func (f *FS) Names(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// List returns metadata for every .md file directly inside dir.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.FileMetadata
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsMarkdown(e.Name()) {
			continue
		}
		m, err := f.describe(filepath.Join(base, e.Name()), e)
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *FS) describe(abs string, d fs.DirEntry) (models.FileMetadata, error) {
	info, err := d.Info()
	if err != nil {
		return models.FileMetadata{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.FileMetadata{}, err
	}
	rel, _ := filepath.Rel(f.root, abs)
	return models.FileMetadata{
		Path:      filepath.ToSlash(rel),
		Checksum:  checksum.Sum(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Exists reports whether path exists.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return true, nil
}

// Read returns the raw bytes of a repository file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrPathNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".adrkit-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	// Keep the permissions of the file being replaced.
	if info, statErr := os.Stat(abs); statErr == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// MkdirAll creates dir (relative to root) if missing.
func (f *FS) MkdirAll(dir string) error {
	abs, err := f.safePath(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	return nil
}

// IsMarkdown reports whether name has a .md extension, ignoring case.
func IsMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
