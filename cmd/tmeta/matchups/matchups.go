// Package matchups implements the matchups command.
package matchups

import (
	"context"
	"fmt"
	"os"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows estimated faction-vs-faction results. Standings exports
// don't include per-game pairings, so these are statistical estimates from
// event co-occurrence, not literal head-to-head records.
type Command struct {
	Faction  string `help:"Filter to one faction's matchups."`
	Window   string `help:"Filter to one meta window."`
	Format   string `help:"Filter to one import format."`
	MinGames int    `default:"10" help:"Drop cells with fewer estimated games."`
}

// Run executes the matchups command.
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

	cells := stats.Matchups(records, c.MinGames)

	var rows [][]string
	for _, cell := range cells {
		if c.Faction != "" && cell.Faction != c.Faction {
			continue
		}
		rows = append(rows, []string{
			cell.Faction,
			cell.Opponent,
			output.FormatWinRate(cell.WinRate),
			output.FormatGames(cell.Games),
		})
	}

	if err := output.Table(os.Stdout,
		[]string{"Faction", "Opponent", "Est. Win Rate", "Est. Games"}, rows); err != nil {
		return err
	}

	fmt.Println("\nEstimated from event co-occurrence; standings data has no per-game pairings.")
	return nil
}
