// Package recompute implements the recompute command.
package recompute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/ingest"
)

// Command rebuilds all ratings from the stored import history. Ratings are
// reset to defaults and every import is replayed in chronological order, so
// running it twice yields the same result. Intended for rating algorithm
// changes or corruption recovery, not routine use.
type Command struct{}

// Run executes the recompute command.
func (c *Command) Run(d *cache.DB, log *slog.Logger) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	importer := ingest.NewImporter(store, ingest.WithLogger(log))
	updated, err := importer.RecomputeAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Recomputed ratings for %d players\n", updated)
	return nil
}
