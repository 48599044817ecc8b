// Package models defines the domain types for adrkit.
package models

import "time"

// Record is the metadata of one decision record on disk.
type Record struct {
	Path       string    `json:"path"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Date       string    `json:"date,omitempty"`
	Deciders   []string  `json:"deciders,omitempty"`
	Convention string    `json:"convention"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
