// Package sync implements the sync command.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warhall/tmeta/internal/archive"
	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/ingest"
)

// Command syncs a git archive of tournament exports and imports anything new.
type Command struct {
	ArchiveURL string `help:"Export archive git repo URL." required:""`
	By         string `default:"archive-sync"              help:"Importer identity to record."`
}

// Run executes the sync command.
func (c *Command) Run(d *cache.DB, log *slog.Logger) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	client := archive.NewClient(cache.ArchivePath(),
		archive.WithRepoURL(c.ArchiveURL),
		archive.WithLogger(log),
		archive.WithImportedBy(c.By),
	)

	imported, err := client.Sync(ctx, store, ingest.NewImporter(store, ingest.WithLogger(log)))
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d new exports\n", imported)
	return nil
}
