// Package accounts implements the accounts command.
package accounts

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/db"
	"github.com/warhall/tmeta/internal/output"
)

// Command lists platform accounts, or adds one with --add.
type Command struct {
	Add     string `help:"Add an account with this username."`
	Display string `help:"Display name for --add."`
}

// Run executes the accounts command.
func (c *Command) Run(d *cache.DB) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	if c.Add != "" {
		if err := store.UpsertAccount(ctx, db.Account{
			ID:          uuid.NewString(),
			Username:    c.Add,
			DisplayName: c.Display,
		}); err != nil {
			return err
		}
		fmt.Printf("Added account %s\n", c.Add)
		return nil
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, len(accounts))
	for i, a := range accounts {
		rows[i] = []string{a.Username, a.DisplayName, a.ID}
	}

	return output.Table(os.Stdout, []string{"Username", "Display Name", "ID"}, rows)
}
