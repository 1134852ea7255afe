// Package link implements the link command.
package link

import (
	"context"
	"fmt"

	"github.com/warhall/tmeta/internal/cache"
)

// Command links a rated player to a platform account.
type Command struct {
	Player  string `arg:"" help:"Player display name."`
	Account string `arg:"" help:"Account username."`
}

// Run executes the link command.
func (c *Command) Run(d *cache.DB) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	player, err := store.GetGlickoPlayerByName(ctx, c.Player)
	if err != nil {
		return err
	}

	account, err := store.GetAccountByUsername(ctx, c.Account)
	if err != nil {
		return err
	}

	linked, err := store.LinkGlickoPlayer(ctx, player.ID, account.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Linked %s to account %s\n", linked.Name, account.Username)
	return nil
}
