package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound indicates a lookup by id or name matched nothing. Callers
// passing an unknown id made a mistake, so this surfaces explicitly rather
// than being swallowed.
var ErrNotFound = errors.New("not found")

// Import is the persisted record of one ingestion.
type Import struct {
	ID         string
	ImportedBy string
	EventName  string
	EventDate  string
	Format     string
	MetaWindow string
	RawData    string
	ParsedData []byte
	RawHash    string
	CreatedAt  string
}

// InsertImport persists an import row.
func (s *SQLiteStore) InsertImport(ctx context.Context, imp Import) error {
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO imports (id, imported_by, event_name, event_date, format, meta_window, raw_data, parsed_data, raw_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, imp.ID, imp.ImportedBy, imp.EventName, imp.EventDate, imp.Format, imp.MetaWindow,
		imp.RawData, string(imp.ParsedData), imp.RawHash, imp.CreatedAt); err != nil {
		return fmt.Errorf("insert import %s: %w", imp.ID, err)
	}
	return nil
}

// GetImport returns one import by id.
func (s *SQLiteStore) GetImport(ctx context.Context, id string) (Import, error) {
	var imp Import
	var parsed string
	err := s.q.QueryRowContext(ctx, `
		SELECT id, imported_by, event_name, event_date, format, meta_window, raw_data, parsed_data, raw_hash, created_at
		FROM imports WHERE id = ?
	`, id).Scan(&imp.ID, &imp.ImportedBy, &imp.EventName, &imp.EventDate, &imp.Format,
		&imp.MetaWindow, &imp.RawData, &parsed, &imp.RawHash, &imp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Import{}, fmt.Errorf("get import %s: %w", id, err)
	}
	imp.ParsedData = []byte(parsed)
	return imp, nil
}

// ListImports returns every import in replay order: event date, then
// ingestion time, then id as a final deterministic tie-break.
func (s *SQLiteStore) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, imported_by, event_name, event_date, format, meta_window, raw_data, parsed_data, raw_hash, created_at
		FROM imports
		ORDER BY event_date, created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []Import
	for rows.Next() {
		var imp Import
		var parsed string
		if err := rows.Scan(&imp.ID, &imp.ImportedBy, &imp.EventName, &imp.EventDate, &imp.Format,
			&imp.MetaWindow, &imp.RawData, &parsed, &imp.RawHash, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.ParsedData = []byte(parsed)
		result = append(result, imp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}

	return result, nil
}

// HasImportHash reports whether an import with the given raw-content hash
// already exists. The archive sync uses this to skip files it has ingested.
func (s *SQLiteStore) HasImportHash(ctx context.Context, hash string) (bool, error) {
	var n int
	if err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM imports WHERE raw_hash = ?", hash).Scan(&n); err != nil {
		return false, fmt.Errorf("check import hash: %w", err)
	}
	return n > 0, nil
}

// GlickoPlayer is one rating subject.
type GlickoPlayer struct {
	ID               string
	AccountID        string // Empty when not linked.
	Name             string
	Rating           float64
	Deviation        float64
	Volatility       float64
	GamesPlayed      int
	LastRatingPeriod string // Import id, empty before the first update.
}

// InsertGlickoPlayer creates a new rating subject.
func (s *SQLiteStore) InsertGlickoPlayer(ctx context.Context, p GlickoPlayer) error {
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO glicko_players (id, account_id, name, rating, deviation, volatility, games_played, last_rating_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, nullable(p.AccountID), p.Name, p.Rating, p.Deviation, p.Volatility,
		p.GamesPlayed, nullable(p.LastRatingPeriod)); err != nil {
		return fmt.Errorf("insert player %s: %w", p.Name, err)
	}
	return nil
}

// UpdateGlickoPlayer persists a player's rating triple, cumulative game
// count, and last applied import.
func (s *SQLiteStore) UpdateGlickoPlayer(ctx context.Context, p GlickoPlayer) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE glicko_players
		SET rating = ?, deviation = ?, volatility = ?, games_played = ?, last_rating_period = ?
		WHERE id = ?
	`, p.Rating, p.Deviation, p.Volatility, p.GamesPlayed, nullable(p.LastRatingPeriod), p.ID)
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("player %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// LinkGlickoPlayer links a rating subject to a platform account.
func (s *SQLiteStore) LinkGlickoPlayer(ctx context.Context, playerID, accountID string) (GlickoPlayer, error) {
	res, err := s.q.ExecContext(ctx,
		"UPDATE glicko_players SET account_id = ? WHERE id = ?", accountID, playerID)
	if err != nil {
		return GlickoPlayer{}, fmt.Errorf("link player %s: %w", playerID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return GlickoPlayer{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	return s.GetGlickoPlayer(ctx, playerID)
}

// GetGlickoPlayer returns one rating subject by id.
func (s *SQLiteStore) GetGlickoPlayer(ctx context.Context, id string) (GlickoPlayer, error) {
	return s.getPlayer(ctx, "id = ?", id)
}

// GetGlickoPlayerByName returns one rating subject by display name. The
// lookup is case-insensitive.
func (s *SQLiteStore) GetGlickoPlayerByName(ctx context.Context, name string) (GlickoPlayer, error) {
	return s.getPlayer(ctx, "name = ?", name)
}

func (s *SQLiteStore) getPlayer(ctx context.Context, where string, arg any) (GlickoPlayer, error) {
	var p GlickoPlayer
	var accountID, lastPeriod sql.NullString
	err := s.q.QueryRowContext(ctx, `
		SELECT id, account_id, name, rating, deviation, volatility, games_played, last_rating_period
		FROM glicko_players WHERE `+where, arg,
	).Scan(&p.ID, &accountID, &p.Name, &p.Rating, &p.Deviation, &p.Volatility, &p.GamesPlayed, &lastPeriod)
	if errors.Is(err, sql.ErrNoRows) {
		return GlickoPlayer{}, fmt.Errorf("player %v: %w", arg, ErrNotFound)
	}
	if err != nil {
		return GlickoPlayer{}, fmt.Errorf("get player %v: %w", arg, err)
	}
	p.AccountID = accountID.String
	p.LastRatingPeriod = lastPeriod.String
	return p, nil
}

// ListGlickoPlayers returns every rating subject, ordered by name.
func (s *SQLiteStore) ListGlickoPlayers(ctx context.Context) ([]GlickoPlayer, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, account_id, name, rating, deviation, volatility, games_played, last_rating_period
		FROM glicko_players
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []GlickoPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return result, nil
}

// scanPlayer scans one glicko_players row.
func scanPlayer(rows *sql.Rows) (GlickoPlayer, error) {
	var p GlickoPlayer
	var accountID, lastPeriod sql.NullString
	if err := rows.Scan(&p.ID, &accountID, &p.Name, &p.Rating, &p.Deviation,
		&p.Volatility, &p.GamesPlayed, &lastPeriod); err != nil {
		return GlickoPlayer{}, fmt.Errorf("scan player: %w", err)
	}
	p.AccountID = accountID.String
	p.LastRatingPeriod = lastPeriod.String
	return p, nil
}

// ResetGlickoPlayers resets every rating subject to the default triple and
// deletes all history. The recompute driver calls this before replaying
// imports so repeated recomputes are idempotent.
func (s *SQLiteStore) ResetGlickoPlayers(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM glicko_history"); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `
		UPDATE glicko_players
		SET rating = 1500, deviation = 350, volatility = 0.06, games_played = 0, last_rating_period = NULL
	`); err != nil {
		return fmt.Errorf("reset players: %w", err)
	}
	return nil
}

// HistoryEntry is one immutable audit row per (player, import).
type HistoryEntry struct {
	PlayerID        string
	ImportID        string
	RatingBefore    float64
	RatingAfter     float64
	DeviationBefore float64
	DeviationAfter  float64
	VolatilityAfter float64
	Delta           float64
	Games           int
	CreatedAt       string
}

// InsertHistory appends an audit row.
func (s *SQLiteStore) InsertHistory(ctx context.Context, h HistoryEntry) error {
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO glicko_history (player_id, import_id, rating_before, rating_after, deviation_before, deviation_after, volatility_after, delta, games, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.PlayerID, h.ImportID, h.RatingBefore, h.RatingAfter, h.DeviationBefore,
		h.DeviationAfter, h.VolatilityAfter, h.Delta, h.Games, h.CreatedAt); err != nil {
		return fmt.Errorf("insert history for %s: %w", h.PlayerID, err)
	}
	return nil
}

// ListHistory returns a player's audit rows in replay order.
func (s *SQLiteStore) ListHistory(ctx context.Context, playerID string) ([]HistoryEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT h.player_id, h.import_id, h.rating_before, h.rating_after, h.deviation_before, h.deviation_after, h.volatility_after, h.delta, h.games, h.created_at
		FROM glicko_history h
		JOIN imports i ON i.id = h.import_id
		WHERE h.player_id = ?
		ORDER BY i.event_date, i.created_at, i.id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.PlayerID, &h.ImportID, &h.RatingBefore, &h.RatingAfter,
			&h.DeviationBefore, &h.DeviationAfter, &h.VolatilityAfter, &h.Delta, &h.Games, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		result = append(result, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return result, nil
}

// CountHistory returns the total number of audit rows.
func (s *SQLiteStore) CountHistory(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM glicko_history").Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Account is a platform account a rating subject may link to.
type Account struct {
	ID          string
	Username    string
	DisplayName string
}

// UpsertAccount inserts or updates an account by username.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, a Account) error {
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (id, username, display_name)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET display_name = excluded.display_name
	`, a.ID, a.Username, a.DisplayName); err != nil {
		return fmt.Errorf("upsert account %s: %w", a.Username, err)
	}
	return nil
}

// GetAccount returns one account by id.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	var display sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, username, display_name FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.Username, &display)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	a.DisplayName = display.String
	return a, nil
}

// GetAccountByUsername returns one account by username.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	var a Account
	var display sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, username, display_name FROM accounts WHERE username = ?", username,
	).Scan(&a.ID, &a.Username, &display)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account %s: %w", username, err)
	}
	a.DisplayName = display.String
	return a, nil
}

// ListAccounts returns every account, ordered by username.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, username, display_name FROM accounts ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []Account
	for rows.Next() {
		var a Account
		var display sql.NullString
		if err := rows.Scan(&a.ID, &a.Username, &display); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.DisplayName = display.String
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return result, nil
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
