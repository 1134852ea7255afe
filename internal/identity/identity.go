// Package identity resolves free-text player names from imports to stable
// rating subjects.
//
// Matching is a case-insensitive exact comparison against stored display
// names. Fuzzy matching is reserved for a different job: suggesting a
// platform account link when a name is seen for the first time.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/warhall/tmeta/internal/db"
	"github.com/warhall/tmeta/internal/glicko"
)

// minAccountSimilarity is the normalized similarity required before a new
// player is linked to a platform account by name alone.
const minAccountSimilarity = 0.85

// Store is the set of queries identity resolution needs.
type Store interface {
	ListGlickoPlayers(ctx context.Context) ([]db.GlickoPlayer, error)
	ListAccounts(ctx context.Context) ([]db.Account, error)
	InsertGlickoPlayer(ctx context.Context, p db.GlickoPlayer) error
}

// Resolver maps player names to rating subjects within one import. It works
// against a snapshot of existing subjects taken at construction, adding
// subjects it creates to the same snapshot so two identical names in one
// import resolve to one id. Build one per import and discard it after.
type Resolver struct {
	store    Store
	byName   map[string]db.GlickoPlayer
	accounts []db.Account
}

// NewResolver snapshots existing rating subjects and accounts. Construct it
// inside the same transaction the import runs in.
func NewResolver(ctx context.Context, store Store) (*Resolver, error) {
	players, err := store.ListGlickoPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot players: %w", err)
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot accounts: %w", err)
	}

	byName := make(map[string]db.GlickoPlayer, len(players))
	for _, p := range players {
		byName[normalize(p.Name)] = p
	}

	return &Resolver{store: store, byName: byName, accounts: accounts}, nil
}

// Resolve returns the rating subject for a name, creating one at the default
// rating triple if no existing subject matches. Newly created subjects are
// linked to a platform account when one matches the name closely enough.
func (r *Resolver) Resolve(ctx context.Context, name string) (db.GlickoPlayer, error) {
	if p, ok := r.byName[normalize(name)]; ok {
		return p, nil
	}

	p := db.GlickoPlayer{
		ID:         uuid.NewString(),
		Name:       name,
		Rating:     glicko.DefaultRating,
		Deviation:  glicko.DefaultDeviation,
		Volatility: glicko.DefaultVolatility,
	}
	if account, ok := BestAccountMatch(name, r.accounts); ok {
		p.AccountID = account.ID
	}

	if err := r.store.InsertGlickoPlayer(ctx, p); err != nil {
		return db.GlickoPlayer{}, fmt.Errorf("create player %q: %w", name, err)
	}

	r.byName[normalize(name)] = p
	return p, nil
}

// BestAccountMatch returns the account whose username or display name is most
// similar to the given player name, if any clears the similarity threshold.
func BestAccountMatch(name string, accounts []db.Account) (db.Account, bool) {
	var best db.Account
	bestScore := 0.0

	for _, a := range accounts {
		score := max(similarity(name, a.Username), similarity(name, a.DisplayName))
		if score > bestScore {
			best = a
			bestScore = score
		}
	}

	return best, bestScore >= minAccountSimilarity
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// similarity is 1 minus the normalized Levenshtein distance between the
// lowercased inputs; 1 means identical, 0 means nothing in common.
func similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	longest := max(len(a), len(b))
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein is the classic two-row edit distance.
func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
