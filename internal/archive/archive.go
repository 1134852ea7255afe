// Package archive syncs and ingests tournament exports from a git data
// archive.
//
// The archive lays exports out as <window>/<format>/<date>--<event>.csv,
// where window is the meta window label, format is the dialect code, and the
// filename carries the event date and name for dialects that don't describe
// their own events. Files already ingested (matched by content hash) are
// skipped, so repeated syncs only import what's new.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/warhall/tmeta/internal/ingest"
)

// Importer ingests one export batch.
type Importer interface {
	Import(ctx context.Context, p ingest.Params) (ingest.Result, error)
}

// Store is the set of queries the archive loader needs.
type Store interface {
	HasImportHash(ctx context.Context, hash string) (bool, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRepoURL sets the git repository URL.
func WithRepoURL(url string) ClientOption {
	return func(c *Client) {
		c.repoURL = url
	}
}

// WithLogger sets the logger for progress output.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithImportedBy sets the importer identity recorded on each import.
func WithImportedBy(name string) ClientOption {
	return func(c *Client) {
		c.importedBy = name
	}
}

// Client syncs and ingests archive data.
type Client struct {
	archivePath string
	repoURL     string
	importedBy  string
	log         *slog.Logger
}

// NewClient creates a new archive client.
func NewClient(archivePath string, opts ...ClientOption) *Client {
	c := &Client{
		archivePath: archivePath,
		importedBy:  "archive-sync",
		log:         slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Sync clones or updates the archive, then imports any export file whose
// content hasn't been ingested. It returns the number of files imported.
func (c *Client) Sync(ctx context.Context, store Store, importer Importer) (int, error) {
	if err := c.pull(ctx); err != nil {
		return 0, fmt.Errorf("sync archive: %w", err)
	}
	return c.load(ctx, store, importer)
}

// load walks the archive and imports new export files.
func (c *Client) load(ctx context.Context, store Store, importer Importer) (int, error) {
	files, err := findExports(c.archivePath)
	if err != nil {
		return 0, fmt.Errorf("find exports: %w", err)
	}

	imported := 0
	for _, f := range files {
		raw, err := os.ReadFile(f.path)
		if err != nil {
			c.log.Warn("Failed to read export", "file", f.path, "error", err)
			continue
		}

		hash := sha256.Sum256(raw)
		seen, err := store.HasImportHash(ctx, hex.EncodeToString(hash[:]))
		if err != nil {
			return imported, err
		}
		if seen {
			continue
		}

		result, err := importer.Import(ctx, ingest.Params{
			Raw:        string(raw),
			Format:     f.format,
			EventName:  f.eventName,
			EventDate:  f.eventDate,
			MetaWindow: f.window,
			ImportedBy: c.importedBy,
		})
		if err != nil {
			c.log.Warn("Failed to import export", "file", f.path, "error", err)
			continue
		}

		c.log.Info("Imported archive export",
			"file", filepath.Base(f.path),
			"import", result.ImportID,
			"players", result.Imported)
		imported++
	}

	return imported, nil
}

// export is one CSV file in the archive.
type export struct {
	path      string
	window    string
	format    string
	eventName string
	eventDate string
}

// findExports returns every recognizable export file in the archive, in
// lexical walk order.
func findExports(archivePath string) ([]export, error) {
	var exports []export

	windows, err := os.ReadDir(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, w := range windows {
		if !w.IsDir() || strings.HasPrefix(w.Name(), ".") {
			continue
		}

		formats, err := os.ReadDir(filepath.Join(archivePath, w.Name()))
		if err != nil {
			return nil, err
		}

		for _, f := range formats {
			if !f.IsDir() {
				continue
			}

			files, err := os.ReadDir(filepath.Join(archivePath, w.Name(), f.Name()))
			if err != nil {
				return nil, err
			}

			for _, file := range files {
				if file.IsDir() || !strings.HasSuffix(file.Name(), ".csv") {
					continue
				}

				date, name := splitExportName(file.Name())
				exports = append(exports, export{
					path:      filepath.Join(archivePath, w.Name(), f.Name(), file.Name()),
					window:    w.Name(),
					format:    f.Name(),
					eventName: name,
					eventDate: date,
				})
			}
		}
	}

	return exports, nil
}

// splitExportName splits "<date>--<event>.csv" into its parts. Files without
// the separator have no date; self-described dialects don't need one.
func splitExportName(filename string) (date, name string) {
	base := strings.TrimSuffix(filename, ".csv")
	date, name, found := strings.Cut(base, "--")
	if !found {
		return "", base
	}
	return date, name
}

// pull clones or updates the archive repository.
func (c *Client) pull(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.archivePath), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	var progress io.Writer
	if c.log.Enabled(ctx, slog.LevelInfo) {
		progress = os.Stderr
	}

	if _, err := os.Stat(filepath.Join(c.archivePath, ".git")); err == nil {
		c.log.Info("Updating export archive")
		r, err := git.PlainOpen(c.archivePath)
		if err != nil {
			return fmt.Errorf("open repo: %w", err)
		}
		w, err := r.Worktree()
		if err != nil {
			return fmt.Errorf("get worktree: %w", err)
		}
		if err := w.Reset(&git.ResetOptions{Mode: git.HardReset}); err != nil {
			return fmt.Errorf("reset worktree: %w", err)
		}
		if err := w.PullContext(ctx, &git.PullOptions{Progress: progress}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return err
		}
		return nil
	}

	c.log.Info("Cloning export archive")
	_, err := git.PlainCloneContext(ctx, c.archivePath, false, &git.CloneOptions{
		URL:          c.repoURL,
		Depth:        1,
		SingleBranch: true,
		Progress:     progress,
	})
	if err != nil {
		return fmt.Errorf("clone repo: %w", err)
	}
	return nil
}
