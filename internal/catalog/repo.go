package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Snippet string `json:"snippet"`
}

// ListOptions filters and pages List.
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

const recordColumns = `path, id, title, status, date, deciders, convention, checksum, updated_at`

// Upsert inserts or replaces a record and its FTS entry within a transaction.
func (db *DB) Upsert(r models.Record, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	deciders := r.Deciders
	if deciders == nil {
		deciders = []string{}
	}
	decidersJSON, _ := json.Marshal(deciders)

	_, err = tx.Exec(`
		INSERT INTO records (path, id, title, status, date, deciders, convention, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id         = excluded.id,
			title      = excluded.title,
			status     = excluded.status,
			date       = excluded.date,
			deciders   = excluded.deciders,
			convention = excluded.convention,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.Path, r.ID, r.Title, r.Status, r.Date, string(decidersJSON), r.Convention, r.Checksum, body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert record: %w", err)
	}
	if err := ftsUpsert(tx, r.Path, r.Title, r.Status, body); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a record and its FTS entry.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM records WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete record: %w", err)
	}
	return tx.Commit()
}

// Get returns the catalogued record at path.
func (db *DB) Get(path string) (*models.Record, error) {
	row := db.conn.QueryRow(`SELECT `+recordColumns+` FROM records WHERE path = ?`, path)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: %s: %w", path, apperr.ErrPathNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get: %w", err)
	}
	return r, nil
}

// List returns catalogued records in path order plus the total matching
// count. A Status filter ignores case; Limit <= 0 means no limit.
func (db *DB) List(opts ListOptions) ([]models.Record, int, error) {
	where := ""
	var args []any
	if s := strings.TrimSpace(opts.Status); s != "" {
		where = ` WHERE status = ? COLLATE NOCASE`
		args = append(args, s)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`SELECT `+recordColumns+` FROM records`+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("catalog: list: %w", err)
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// AllChecksums returns the stored checksum of every catalogued record.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM records`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var r models.Record
	var deciders string
	if err := s.Scan(&r.Path, &r.ID, &r.Title, &r.Status, &r.Date, &deciders, &r.Convention, &r.Checksum, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(deciders), &r.Deciders); err != nil {
		return nil, fmt.Errorf("deciders of %s: %w", r.Path, err)
	}
	return &r, nil
}
