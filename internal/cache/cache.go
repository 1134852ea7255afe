// Package cache manages the local tmeta database and archive checkout.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/warhall/tmeta/internal/db"
)

// Dir returns the tmeta cache directory.
//
// It uses os.UserCacheDir, which respects XDG_CACHE_HOME on Linux, uses
// ~/Library/Caches on macOS, and %LocalAppData% on Windows. If the user cache
// directory can't be determined it falls back to the system temp directory.
func Dir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tmeta")
	}
	return filepath.Join(base, "tmeta")
}

// ArchivePath returns where the export archive is checked out.
func ArchivePath() string {
	return filepath.Join(Dir(), "export-archive")
}

// DB provides access to a tmeta database. It lazily opens the database on
// first use. Embed it in a kong command to pick up its flags.
type DB struct {
	DBPath string `help:"Path to SQLite database. Defaults to the user cache dir." name:"db"`

	store *db.SQLiteStore
}

// Store returns the database store, opening and initializing it if needed.
func (d *DB) Store(ctx context.Context) (*db.SQLiteStore, error) {
	if d.store != nil {
		return d.store, nil
	}

	path := d.DBPath
	if path == "" {
		if err := os.MkdirAll(Dir(), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		path = filepath.Join(Dir(), "tmeta.db")
	}

	store, err := db.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		store.Close() //nolint:errcheck // Already returning error.
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	d.store = store
	return d.store, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}
