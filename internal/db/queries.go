package db

import (
	"context"
	"fmt"

	"github.com/warhall/tmeta/internal/record"
)

// ListWindows returns the distinct meta window labels present in the corpus,
// ordered lexically.
func (s *SQLiteStore) ListWindows(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT DISTINCT meta_window FROM imports ORDER BY meta_window")
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		result = append(result, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate windows: %w", err)
	}

	return result, nil
}

// Leaderboard returns rating subjects ordered by rating descending, breaking
// ties by lower deviation then name. A limit of zero returns everyone.
func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]GlickoPlayer, error) {
	query := `
		SELECT id, account_id, name, rating, deviation, volatility, games_played, last_rating_period
		FROM glicko_players
		WHERE games_played > 0
		ORDER BY rating DESC, deviation, name
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
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
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}

	return result, nil
}

// LoadRecords returns the decoded record corpus in replay order, optionally
// filtered by meta window and format. Imports whose stored payload fails to
// decode are skipped - a corrupt payload must never take down a read.
func (s *SQLiteStore) LoadRecords(ctx context.Context, window, format string) ([]record.TournamentRecord, error) {
	query := "SELECT parsed_data FROM imports WHERE 1=1"
	var args []any

	if window != "" {
		query += " AND meta_window = ?"
		args = append(args, window)
	}
	if format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}

	query += " ORDER BY event_date, created_at, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query.

	var result []record.TournamentRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record payload: %w", err)
		}
		records, err := record.Decode([]byte(payload))
		if err != nil {
			continue
		}
		result = append(result, records...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return result, nil
}
