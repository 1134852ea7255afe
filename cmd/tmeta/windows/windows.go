// Package windows implements the windows command.
package windows

import (
	"context"
	"fmt"

	"github.com/warhall/tmeta/internal/cache"
)

// Command lists the distinct meta window labels in the corpus.
type Command struct{}

// Run executes the windows command.
func (c *Command) Run(d *cache.DB) error {
	ctx := context.Background()

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	windows, err := store.ListWindows(ctx)
	if err != nil {
		return err
	}

	for _, w := range windows {
		fmt.Println(w)
	}
	return nil
}
