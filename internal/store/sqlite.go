package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

// Store persists alerts, subscriptions, and notification records in SQLite.
// The connection pool is capped at one connection; SQLite allows a single
// writer and the dedup check-then-insert relies on serialized access.
type Store struct {
	db     *sql.DB
	dbPath string
	clock  clockwork.Clock
	logger *slog.Logger

	// Serializes CreateIfAbsent so two in-process triggers for the same
	// (location, type) cannot both pass the not-found check.
	mu sync.Mutex
}

// New opens (or creates) the SQLite database and runs migrations.
func New(dbPath string, clock clockwork.Clock, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single-writer
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db, dbPath: dbPath, clock: clock, logger: logger}, nil
}

// DBPath returns the database file path.
func (s *Store) DBPath() string { return s.dbPath }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness reports whether the database is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
