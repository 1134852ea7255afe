// Package imports implements the import command.
package imports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/warhall/tmeta/internal/cache"
	"github.com/warhall/tmeta/internal/ingest"
)

// Command imports one tournament export file.
type Command struct {
	File string `arg:"" help:"Path to the export file, or '-' for stdin."`

	Format string `default:"A" enum:"A,B,C" help:"Export dialect: A (BCP-style), B (TabletopAdmiral-style), C (generic)."`
	Event  string `help:"Event name, for dialects that don't self-describe."`
	Date   string `help:"Event date (ISO, e.g. 2025-04-12)."`
	Window string `help:"Meta window label (e.g. 2025-Q2)." required:""`
	By     string `default:"cli"                            help:"Importer identity to record."`
}

// Run executes the import command.
func (c *Command) Run(d *cache.DB, log *slog.Logger) error {
	ctx := context.Background()

	raw, err := readFile(c.File)
	if err != nil {
		return err
	}

	store, err := d.Store(ctx)
	if err != nil {
		return err
	}

	importer := ingest.NewImporter(store, ingest.WithLogger(log))
	result, err := importer.Import(ctx, ingest.Params{
		Raw:        raw,
		Format:     c.Format,
		EventName:  c.Event,
		EventDate:  c.Date,
		MetaWindow: c.Window,
		ImportedBy: c.By,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Import %s: %d players imported, %d rated\n",
		result.ImportID, result.Imported, result.PlayersUpdated)
	return nil
}

func readFile(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(b), nil
}
