package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/warhall/tmeta/internal/db"
	"github.com/warhall/tmeta/internal/record"
)

// RecomputeAll rebuilds every rating from scratch: it resets all rating
// subjects to the default triple, deletes the audit trail, and replays every
// stored import in chronological order through the rating step. The whole
// replay runs in one transaction, so repeated recomputes are idempotent and
// a failed recompute leaves prior state untouched.
//
// Imports whose stored payload no longer decodes are skipped, not fatal.
// Account linking is not re-run; subjects are reused by name.
//
// This is an administrative batch operation for algorithm changes or
// corruption recovery, not for routine use. It returns the number of
// distinct players whose rating was recomputed.
func (i *Importer) RecomputeAll(ctx context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	started := i.now()
	updated := make(map[string]bool)

	err := i.store.Tx(ctx, func(tx *db.SQLiteStore) error {
		if err := tx.ResetGlickoPlayers(ctx); err != nil {
			return err
		}

		imports, err := tx.ListImports(ctx)
		if err != nil {
			return err
		}

		for _, imp := range imports {
			records, err := record.Decode(imp.ParsedData)
			if err != nil {
				i.log.Warn("Skipping undecodable import", "import", imp.ID, "error", err)
				continue
			}

			ids, err := i.rate(ctx, tx, imp.ID, records, imp.CreatedAt)
			if err != nil {
				return fmt.Errorf("replay import %s: %w", imp.ID, err)
			}
			for _, id := range ids {
				updated[id] = true
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recompute: %w", err)
	}

	i.log.Info("Recomputed ratings",
		"players", len(updated),
		"elapsed", time.Since(started))

	return len(updated), nil
}
