// Package players implements the players command.
package players

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/output"
)

// Command shows the Glicko-2 leaderboard, or one player's rating history
// with --history.
type Command struct {
	History string `help:"Show rating history for this player instead."`
	Limit   int    `default:"25" help:"Maximum leaderboard entries (0 for all)."`
}

// Run executes the players command.
func (c *Command) Run(d *cache.DB) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	if c.History != "" {
		player, err := store.GetGlickoPlayerByName(ctx, c.History)
		if err != nil {
			return err
		}

		history, err := store.ListHistory(ctx, player.ID)
		if err != nil {
			return err
		}

		rows := make([][]string, len(history))
		for i, h := range history {
			rows[i] = []string{
				h.CreatedAt,
				output.FormatRating(h.RatingBefore),
				output.FormatRating(h.RatingAfter),
				output.FormatDelta(h.Delta),
				fmt.Sprintf("%.0f", h.DeviationAfter),
				strconv.Itoa(h.Games),
			}
		}

		fmt.Printf("%s - rating %s, deviation %.0f, %d games\n\n",
			player.Name, output.FormatRating(player.Rating), player.Deviation, player.GamesPlayed)
		return output.Table(os.Stdout,
			[]string{"When", "Before", "After", "Delta", "RD", "Games"}, rows)
	}

	leaders, err := store.Leaderboard(ctx, c.Limit)
	if err != nil {
		return err
	}

	rows := make([][]string, len(leaders))
	for i, p := range leaders {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			p.Name,
			output.FormatRating(p.Rating),
			fmt.Sprintf("%.0f", p.Deviation),
			strconv.Itoa(p.GamesPlayed),
		}
	}

	return output.Table(os.Stdout, []string{"#", "Player", "Rating", "RD", "Games"}, rows)
}
