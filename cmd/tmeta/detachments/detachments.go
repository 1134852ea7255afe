// Package detachments implements the detachments command.
package detachments

import (
	"context"
	"os"
	"strconv"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows win rates grouped by (faction, detachment).
type Command struct {
	Faction  string `help:"Filter to one faction."`
	Window   string `help:"Filter to one meta window."`
	Format   string `help:"Filter to one import format."`
	MinGames int    `default:"10" help:"Drop detachments with fewer total games."`
}

// Run executes the detachments command.
func (c *Command) Run(d *cache.DB) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	records, err := store.LoadRecords(ctx, c.Window, c.Format)
	if err != nil {
		return err
	}

	detachments := stats.Detachments(records, c.Faction, c.MinGames)

	rows := make([][]string, len(detachments))
	for i, ds := range detachments {
		name := ds.Detachment
		if name == "" {
			name = "(none)"
		}
		rows[i] = []string{
			ds.Faction,
			name,
			output.FormatWinRate(ds.WinRate),
			strconv.Itoa(ds.Games),
			strconv.Itoa(ds.Entries),
		}
	}

	return output.Table(os.Stdout,
		[]string{"Faction", "Detachment", "Win Rate", "Games", "Entries"}, rows)
}
