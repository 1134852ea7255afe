// Package db implements SQLite storage for the tournament-results corpus and
// the Glicko rating state derived from it.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQL driver registration.
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is a SQLite database holding imports, rating state, and
// accounts.
type SQLiteStore struct {
	db *sql.DB
	q  querier
}

// Open opens or creates a SQLite database at the given path.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		db.Close() //nolint:errcheck // Already returning an error.
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	return &SQLiteStore{db: db, q: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for direct queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Init creates the database schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Tx runs fn against a store view backed by a single transaction, committing
// if fn returns nil and rolling back otherwise. An import's writes all happen
// inside one Tx so a failed import leaves no partial rating updates behind.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *SQLiteStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&SQLiteStore{db: s.db, q: tx}); err != nil {
		tx.Rollback() //nolint:errcheck // Already returning an error.
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Schema returns the documented database schema.
func Schema() string {
	return schema
}

const schema = `
-- One ingested tournament export. The parsed_data payload is the canonical
-- []TournamentRecord serialized as JSON; all rating state is in principle
-- derivable by replaying imports in chronological order.
CREATE TABLE IF NOT EXISTS imports (
    id TEXT PRIMARY KEY,            -- UUID
    imported_by TEXT NOT NULL,      -- Importer identity (free text)
    event_name TEXT NOT NULL,
    event_date TEXT NOT NULL,       -- ISO date (e.g. '2025-04-12')
    format TEXT NOT NULL,           -- Dialect code ('A', 'B', 'C')
    meta_window TEXT NOT NULL,      -- Opaque bucketing label (e.g. '2025-Q2')
    raw_data TEXT NOT NULL,         -- Raw export text as submitted
    parsed_data TEXT NOT NULL,      -- Canonical records, JSON
    raw_hash TEXT NOT NULL,         -- SHA-256 of raw_data, for dedupe
    created_at TEXT NOT NULL        -- RFC 3339 timestamp
);

-- Platform accounts a rating subject may be linked to.
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,            -- UUID
    username TEXT NOT NULL UNIQUE,
    display_name TEXT
);

-- One rating subject. Created lazily the first time a name is seen in an
-- import; never deleted. NOCASE makes name resolution case-insensitive.
CREATE TABLE IF NOT EXISTS glicko_players (
    id TEXT PRIMARY KEY,            -- UUID
    account_id TEXT REFERENCES accounts(id),
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    rating REAL NOT NULL DEFAULT 1500,
    deviation REAL NOT NULL DEFAULT 350,
    volatility REAL NOT NULL DEFAULT 0.06,
    games_played INTEGER NOT NULL DEFAULT 0,
    last_rating_period TEXT REFERENCES imports(id)
);

-- Audit trail: one row per (player, import) rating update.
CREATE TABLE IF NOT EXISTS glicko_history (
    player_id TEXT NOT NULL REFERENCES glicko_players(id),
    import_id TEXT NOT NULL REFERENCES imports(id),
    rating_before REAL NOT NULL,
    rating_after REAL NOT NULL,
    deviation_before REAL NOT NULL,
    deviation_after REAL NOT NULL,
    volatility_after REAL NOT NULL,
    delta REAL NOT NULL,            -- rating_after - rating_before
    games INTEGER NOT NULL,         -- Synthesized games in this period
    created_at TEXT NOT NULL,
    PRIMARY KEY (player_id, import_id)
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_imports_window ON imports(meta_window);
CREATE INDEX IF NOT EXISTS idx_imports_date ON imports(event_date, created_at);
CREATE INDEX IF NOT EXISTS idx_history_import ON glicko_history(import_id);
`
