// Package ingest orchestrates tournament imports: parsing, persistence,
// identity resolution, and rating updates.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warhall/tmeta/internal/db"
	"github.com/warhall/tmeta/internal/glicko"
	"github.com/warhall/tmeta/internal/identity"
	"github.com/warhall/tmeta/internal/parse"
	"github.com/warhall/tmeta/internal/record"
)

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger for progress output.
func WithLogger(log *slog.Logger) Option {
	return func(i *Importer) {
		i.log = log
	}
}

// WithClock sets the time source. Tests use this for stable timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		i.now = now
	}
}

// Importer runs import batches against a store. Imports are serialized by a
// process-level mutex: two imports racing on the same player would otherwise
// read-modify-write the same rating state and lose an update.
type Importer struct {
	store *db.SQLiteStore
	log   *slog.Logger
	now   func() time.Time

	mu sync.Mutex
}

// NewImporter returns an Importer backed by the given store.
func NewImporter(store *db.SQLiteStore, opts ...Option) *Importer {
	i := &Importer{
		store: store,
		log:   slog.New(slog.DiscardHandler),
		now:   time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Params describes one import batch.
type Params struct {
	Raw        string
	Format     string // Dialect code ("A", "B", "C").
	EventName  string
	EventDate  string
	MetaWindow string
	ImportedBy string
}

// Result summarizes one import batch. Imported counts every parsed player
// entry; PlayersUpdated counts only those whose rating changed (players with
// zero games are imported but never rated).
type Result struct {
	ImportID       string
	Imported       int
	PlayersUpdated int
}

// Import parses, persists, and rates one batch. Parser tolerance means a
// file that yields zero records still succeeds and updates nobody; a store
// failure aborts the whole batch, since every write happens in one
// transaction.
func (i *Importer) Import(ctx context.Context, p Params) (Result, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	records, err := parse.Parse(p.Format, p.Raw, parse.Hints{
		EventName: p.EventName,
		EventDate: p.EventDate,
		Format:    p.Format,
	})
	if err != nil {
		return Result{}, err
	}

	payload, err := record.Encode(records)
	if err != nil {
		return Result{}, err
	}

	hash := sha256.Sum256([]byte(p.Raw))
	now := i.now().UTC().Format(time.RFC3339)

	result := Result{ImportID: uuid.NewString()}
	for _, rec := range records {
		result.Imported += len(rec.Players)
	}

	err = i.store.Tx(ctx, func(tx *db.SQLiteStore) error {
		if err := tx.InsertImport(ctx, db.Import{
			ID:         result.ImportID,
			ImportedBy: p.ImportedBy,
			EventName:  p.EventName,
			EventDate:  p.EventDate,
			Format:     p.Format,
			MetaWindow: p.MetaWindow,
			RawData:    p.Raw,
			ParsedData: payload,
			RawHash:    hex.EncodeToString(hash[:]),
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		updated, err := i.rate(ctx, tx, result.ImportID, records, now)
		if err != nil {
			return err
		}
		result.PlayersUpdated = len(updated)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %w", p.EventName, err)
	}

	i.log.Info("Imported tournament results",
		"import", result.ImportID,
		"event", p.EventName,
		"imported", result.Imported,
		"updated", result.PlayersUpdated)

	return result, nil
}

// tally accumulates one player's games across every record in an import, so
// a player appearing in two events of one file still gets exactly one rating
// period and one history row per import.
type tally struct {
	player              db.GlickoPlayer
	wins, losses, draws int
}

// rate resolves identities, synthesizes games from each player's tally, and
// applies one Glicko-2 rating period per player. It returns the ids of the
// players whose rating was updated.
func (i *Importer) rate(ctx context.Context, tx *db.SQLiteStore, importID string, records []record.TournamentRecord, now string) ([]string, error) {
	resolver, err := identity.NewResolver(ctx, tx)
	if err != nil {
		return nil, err
	}

	var order []string
	tallies := make(map[string]*tally)

	for _, rec := range records {
		for _, p := range rec.Players {
			if p.Games() == 0 {
				continue
			}

			subject, err := resolver.Resolve(ctx, p.Name())
			if err != nil {
				return nil, err
			}

			t, ok := tallies[subject.ID]
			if !ok {
				t = &tally{player: subject}
				tallies[subject.ID] = t
				order = append(order, subject.ID)
			}
			t.wins += p.Wins
			t.losses += p.Losses
			t.draws += p.Draws
		}
	}

	for _, id := range order {
		t := tallies[id]
		before := glicko.Rating{
			Rating:     t.player.Rating,
			Deviation:  t.player.Deviation,
			Volatility: t.player.Volatility,
		}

		games := glicko.SynthesizeGames(t.wins, t.losses, t.draws)
		after := glicko.Update(before, games)

		t.player.Rating = after.Rating
		t.player.Deviation = after.Deviation
		t.player.Volatility = after.Volatility
		t.player.GamesPlayed += len(games)
		t.player.LastRatingPeriod = importID

		if err := tx.UpdateGlickoPlayer(ctx, t.player); err != nil {
			return nil, err
		}

		if err := tx.InsertHistory(ctx, db.HistoryEntry{
			PlayerID:        t.player.ID,
			ImportID:        importID,
			RatingBefore:    before.Rating,
			RatingAfter:     after.Rating,
			DeviationBefore: before.Deviation,
			DeviationAfter:  after.Deviation,
			VolatilityAfter: after.Volatility,
			Delta:           after.Rating - before.Rating,
			Games:           len(games),
			CreatedAt:       now,
		}); err != nil {
			return nil, err
		}
	}

	return order, nil
}
