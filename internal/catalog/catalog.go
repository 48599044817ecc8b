// Package catalog keeps a SQLite catalog of decision records for fast
// listing and search, with optional FTS5 full-text search.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/adrkit/internal/models"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	path       TEXT PRIMARY KEY,
	id         TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	deciders   TEXT NOT NULL DEFAULT '[]',
	convention TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_records_status ON records(status COLLATE NOCASE);
`

// Catalog is the record catalog used by the HTTP and MCP surfaces.
type Catalog interface {
	Upsert(r models.Record, body string) error
	Delete(path string) error
	Get(path string) (*models.Record, error)
	List(opts ListOptions) ([]models.Record, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ Catalog = (*DB)(nil)

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
