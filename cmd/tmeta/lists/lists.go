// Package lists implements the lists command.
package lists

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
	"github.com/warhall/tmeta/internal/stats"
)

// Command shows the top-performing player entries that submitted an army
// list.
type Command struct {
	Faction    string `help:"Filter to one faction."`
	Detachment string `help:"Filter to one detachment."`
	Window     string `help:"Filter to one meta window."`
	Format     string `help:"Filter to one import format."`
	Limit      int    `default:"10" help:"Maximum entries."`
	Full       bool   `help:"Print full list text after the table."`
}

// Run executes the lists command.
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

	entries := stats.TopLists(records, c.Faction, c.Detachment, c.Limit)

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.PlayerName,
			e.Faction,
			e.EventName,
			fmt.Sprintf("%.0f", e.Points),
			output.FormatWinRate(e.WinRate),
		}
	}

	if err := output.Table(os.Stdout,
		[]string{"#", "Player", "Faction", "Event", "Points", "Win Rate"}, rows); err != nil {
		return err
	}

	if !c.Full {
		return nil
	}

	for i, e := range entries {
		fmt.Printf("\n--- #%d %s (%s, %s) ---\n%s\n",
			i+1, e.PlayerName, e.Faction, e.EventDate, strings.TrimSpace(e.ListText))
	}
	return nil
}
