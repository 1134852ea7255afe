// Package main implements the tmeta CLI for ingesting tournament results and
// querying the competitive meta.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/warhall/tmeta/cmd/tmeta/accounts"
	"github.com/warhall/tmeta/cmd/tmeta/detachments"
	"github.com/warhall/tmeta/cmd/tmeta/faction"
	"github.com/warhall/tmeta/cmd/tmeta/factions"
	"github.com/warhall/tmeta/cmd/tmeta/imports"
	"github.com/warhall/tmeta/cmd/tmeta/link"
	"github.com/warhall/tmeta/cmd/tmeta/lists"
	"github.com/warhall/tmeta/cmd/tmeta/matchups"
	"github.com/warhall/tmeta/cmd/tmeta/players"
	"github.com/warhall/tmeta/cmd/tmeta/query"
	"github.com/warhall/tmeta/cmd/tmeta/recompute"
	"github.com/warhall/tmeta/cmd/tmeta/schema"
	synccmd "github.com/warhall/tmeta/cmd/tmeta/sync"
	"github.com/warhall/tmeta/cmd/tmeta/timeline"
	"github.com/warhall/tmeta/cmd/tmeta/windows"
	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/version"
)

type cli struct {
	Verbose bool             `help:"Enable info logging." short:"v"`
	Version kong.VersionFlag `help:"Print version and exit."`

	Import      imports.Command     `cmd:"" help:"Import a tournament export file."`
	Recompute   recompute.Command   `cmd:"" help:"Rebuild all ratings from the stored import history."`
	Link        link.Command        `cmd:"" help:"Link a rated player to a platform account."`
	Accounts    accounts.Command    `cmd:"" help:"List or add platform accounts."`
	Players     players.Command     `cmd:"" help:"Show the Glicko-2 leaderboard or a player's history."`
	Factions    factions.Command    `cmd:"" help:"Show faction win rates and representation."`
	Faction     faction.Command     `cmd:"" help:"Show one faction in detail."`
	Detachments detachments.Command `cmd:"" help:"Show detachment win rates."`
	Matchups    matchups.Command    `cmd:"" help:"Show estimated faction matchups."`
	Lists       lists.Command       `cmd:"" help:"Show the top-performing army lists."`
	Timeline    timeline.Command    `cmd:"" help:"Show win rate over time."`
	Windows     windows.Command     `cmd:"" help:"List known meta windows."`
	Sync        synccmd.Command     `cmd:"" help:"Sync and import exports from a git archive."`
	Query       query.Command       `cmd:"" help:"Run a SQL query against the database."`
	Schema      schema.Command      `cmd:"" help:"Print the database schema."`

	DB cache.DB `embed:""`
}

func main() {
	c := &cli{}
	ctx := kong.Parse(c,
		kong.Name("tmeta"),
		kong.Description("Tournament meta statistics and Glicko-2 ratings."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.Bind(&c.DB),
	)
	defer c.DB.Close() //nolint:errcheck // Nothing to do with error on program exit.

	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx.FatalIfErrorf(ctx.Run(log))
}
