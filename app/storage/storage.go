// Package storage owns the sqlite connection shared by the conversation
// and task stores.
package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"taskchat/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"

	_ "modernc.org/sqlite"
)

var _ do.Shutdownable = (*DB)(nil)

type DB struct {
	Conn *sql.DB

	path string
}

func New(di *do.Injector) (*DB, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.DB.Path)
}

// Open opens the sqlite database at path, creating parent directories
// as needed. WAL mode is enabled so reads do not block the writer.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.Errorf("failed to create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.Errorf("failed to open database: %w", err)
	}

	if _, err = conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, oops.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err = conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, oops.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{
		Conn: conn,
		path: path,
	}, nil
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) Shutdown() error {
	return db.Conn.Close()
}
