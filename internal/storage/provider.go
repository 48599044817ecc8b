// Package storage defines the repository file-system abstraction.
package storage

import "github.com/starford/adrkit/internal/models"

// Provider is the interface for repository file operations. Every path is
// relative to the repository root and may use either separator.
type Provider interface {
	// Root returns the absolute repository root.
	Root() string
	// Names returns the names of the regular files directly inside dir.
	Names(dir string) ([]string, error)
	// List returns metadata for every .md file directly inside dir.
	List(dir string) ([]models.FileMetadata, error)
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
	// Rel converts a path (absolute or relative) to a slash-separated path
	// relative to the repository root.
	Rel(path string) (string, error)
}
