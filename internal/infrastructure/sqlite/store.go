// Package sqlite is the device-local durable store: sync queue, workflow
// history, user profile and settings. It survives app restarts and is
// the single shared mutable resource between the foreground (enqueue,
// reads) and the background drain (status updates, reference write-back).
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the on-device SQLite database. WAL mode allows concurrent
// reads during writes; the pool is capped at one connection because
// SQLite supports a single writer.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at the given path and applies the
// schema. Safe to call on every app start.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := reclaimInFlight(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reclaim in-flight items: %w", err)
	}
	return &Store{db: db}, nil
}

// reclaimInFlight returns queue items stranded mid-delivery to the
// deliverable pool. Any in_flight row at open time belongs to a drain
// that died with the previous process; attempts are kept because the
// delivery was never rejected by the server.
func reclaimInFlight(db *sql.DB) error {
	_, err := db.Exec(`UPDATE sync_queue SET status=? WHERE status=?`,
		sync.StatusPending, sync.StatusInFlight)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB shared by the repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}
