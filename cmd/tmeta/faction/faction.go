// Package faction implements the faction command.
package faction

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows one faction in detail: its detachment breakdown and win rate
// over time.
type Command struct {
	Name string `arg:"" help:"Faction name."`

	Window   string `help:"Filter to one meta window."`
	Format   string `help:"Filter to one import format."`
	MinGames int    `default:"0" help:"Drop detachments with fewer total games."`
}

// Run executes the faction command.
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

	detachments := stats.Detachments(records, c.Name, c.MinGames)
	rows := make([][]string, len(detachments))
	for i, ds := range detachments {
		name := ds.Detachment
		if name == "" {
			name = "(none)"
		}
		rows[i] = []string{
			name,
			output.FormatWinRate(ds.WinRate),
			strconv.Itoa(ds.Games),
			strconv.Itoa(ds.Entries),
		}
	}

	fmt.Printf("%s detachments:\n", c.Name)
	if err := output.Table(os.Stdout, []string{"Detachment", "Win Rate", "Games", "Entries"}, rows); err != nil {
		return err
	}

	timeline := stats.Timeline(records, c.Name)
	trows := make([][]string, len(timeline))
	for i, p := range timeline {
		trows[i] = []string{p.Date, output.FormatWinRate(p.WinRate), strconv.Itoa(p.Games)}
	}

	fmt.Printf("\n%s over time:\n", c.Name)
	return output.Table(os.Stdout, []string{"Date", "Win Rate", "Games"}, trows)
}
