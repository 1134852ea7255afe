// Package factions implements the factions command.
package factions

import (
	"context"
	"os"
	"strconv"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows faction win rates and representation across the corpus.
type Command struct {
	Window   string `help:"Filter to one meta window."`
	Format   string `help:"Filter to one import format."`
	MinGames int    `default:"10" help:"Drop factions with fewer total games."`
}

// Run executes the factions command.
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

	factions := stats.Factions(records, c.MinGames)

	rows := make([][]string, len(factions))
	for i, f := range factions {
		rows[i] = []string{
			f.Faction,
			output.FormatWinRate(f.WinRate),
			strconv.Itoa(f.Games),
			strconv.Itoa(f.Entries),
		}
	}

	return output.Table(os.Stdout, []string{"Faction", "Win Rate", "Games", "Entries"}, rows)
}
