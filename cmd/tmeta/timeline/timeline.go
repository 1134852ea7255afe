// Package timeline implements the timeline command.
package timeline

import (
	"context"
	"os"
	"strconv"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows win rate bucketed by event date.
type Command struct {
	Faction string `help:"Filter to one faction."`
	Window  string `help:"Filter to one meta window."`
	Format  string `help:"Filter to one import format."`
}

// Run executes the timeline command.
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

	points := stats.Timeline(records, c.Faction)

	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{p.Date, output.FormatWinRate(p.WinRate), strconv.Itoa(p.Games)}
	}

	return output.Table(os.Stdout, []string{"Date", "Win Rate", "Games"}, rows)
}
