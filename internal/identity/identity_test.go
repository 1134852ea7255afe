package identity

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/warhall/tmeta/internal/db"
)

type MockStore struct {
	MockListGlickoPlayers  func(ctx context.Context) ([]db.GlickoPlayer, error)
	MockListAccounts       func(ctx context.Context) ([]db.Account, error)
	MockInsertGlickoPlayer func(ctx context.Context, p db.GlickoPlayer) error
}

func (m *MockStore) ListGlickoPlayers(ctx context.Context) ([]db.GlickoPlayer, error) {
	return m.MockListGlickoPlayers(ctx)
}

func (m *MockStore) ListAccounts(ctx context.Context) ([]db.Account, error) {
	return m.MockListAccounts(ctx)
}

func (m *MockStore) InsertGlickoPlayer(ctx context.Context, p db.GlickoPlayer) error {
	return m.MockInsertGlickoPlayer(ctx, p)
}

func TestResolve(t *testing.T) {
	existing := db.GlickoPlayer{
		ID:         "p-alice",
		Name:       "Alice",
		Rating:     1612,
		Deviation:  110,
		Volatility: 0.059,
	}

	cases := map[string]struct {
		reason   string
		players  []db.GlickoPlayer
		accounts []db.Account
		name     string
		want     db.GlickoPlayer
	}{
		"ExactMatch": {
			reason:  "A name that matches an existing subject resolves to it.",
			players: []db.GlickoPlayer{existing},
			name:    "Alice",
			want:    existing,
		},
		"CaseInsensitiveMatch": {
			reason:  "Matching ignores case and surrounding whitespace.",
			players: []db.GlickoPlayer{existing},
			name:    "  ALICE ",
			want:    existing,
		},
		"CreatesAtDefaults": {
			reason: "An unseen name becomes a new subject at the default rating triple.",
			name:   "Bob",
			want:   db.GlickoPlayer{Name: "Bob", Rating: 1500, Deviation: 350, Volatility: 0.06},
		},
		"LinksSimilarAccount": {
			reason: "A new subject is linked to a platform account whose name is close enough.",
			accounts: []db.Account{
				{ID: "a-1", Username: "completely_different"},
				{ID: "a-2", Username: "bobby_b", DisplayName: "Bobby"},
			},
			name: "Bobby ",
			want: db.GlickoPlayer{AccountID: "a-2", Name: "Bobby ", Rating: 1500, Deviation: 350, Volatility: 0.06},
		},
		"IgnoresDissimilarAccounts": {
			reason:   "Accounts below the similarity threshold are not linked.",
			accounts: []db.Account{{ID: "a-1", Username: "xqzt"}},
			name:     "Bob",
			want:     db.GlickoPlayer{Name: "Bob", Rating: 1500, Deviation: 350, Volatility: 0.06},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := &MockStore{
				MockListGlickoPlayers:  func(_ context.Context) ([]db.GlickoPlayer, error) { return tc.players, nil },
				MockListAccounts:       func(_ context.Context) ([]db.Account, error) { return tc.accounts, nil },
				MockInsertGlickoPlayer: func(_ context.Context, _ db.GlickoPlayer) error { return nil },
			}

			r, err := NewResolver(context.Background(), store)
			if err != nil {
				t.Fatalf("NewResolver(...): %v", err)
			}

			got, err := r.Resolve(context.Background(), tc.name)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.name, err)
			}

			if diff := cmp.Diff(tc.want, got, cmpopts.IgnoreFields(db.GlickoPlayer{}, "ID")); diff != "" {
				t.Errorf("\n%s\nResolve(%q): -want, +got:\n%s", tc.reason, tc.name, diff)
			}
		})
	}
}

func TestResolveDuplicateNames(t *testing.T) {
	// Two spellings of the same name within one import must resolve to one
	// subject, created exactly once.
	var inserted []db.GlickoPlayer
	store := &MockStore{
		MockListGlickoPlayers: func(_ context.Context) ([]db.GlickoPlayer, error) { return nil, nil },
		MockListAccounts:      func(_ context.Context) ([]db.Account, error) { return nil, nil },
		MockInsertGlickoPlayer: func(_ context.Context, p db.GlickoPlayer) error {
			inserted = append(inserted, p)
			return nil
		},
	}

	r, err := NewResolver(context.Background(), store)
	if err != nil {
		t.Fatalf("NewResolver(...): %v", err)
	}

	first, err := r.Resolve(context.Background(), "Carol")
	if err != nil {
		t.Fatalf("Resolve(Carol): %v", err)
	}
	second, err := r.Resolve(context.Background(), "carol")
	if err != nil {
		t.Fatalf("Resolve(carol): %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("duplicate names resolved to different subjects: %q vs %q", first.ID, second.ID)
	}
	if len(inserted) != 1 {
		t.Errorf("want 1 subject created, got %d", len(inserted))
	}
}

func TestBestAccountMatch(t *testing.T) {
	accounts := []db.Account{
		{ID: "a-1", Username: "shadowsun_main", DisplayName: "Shadowsun"},
		{ID: "a-2", Username: "gitzkrieg", DisplayName: "Gitz Krieg"},
	}

	cases := map[string]struct {
		reason string
		name   string
		want   db.Account
		wantOK bool
	}{
		"ExactUsername": {
			reason: "An exact username match always clears the threshold.",
			name:   "gitzkrieg",
			want:   accounts[1],
			wantOK: true,
		},
		"CloseDisplayName": {
			reason: "A near-identical display name clears the threshold.",
			name:   "shadowsuns",
			want:   accounts[0],
			wantOK: true,
		},
		"NoCloseMatch": {
			reason: "A name unlike any account matches nothing.",
			name:   "Magnus",
			wantOK: false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := BestAccountMatch(tc.name, accounts)

			if ok != tc.wantOK {
				t.Errorf("\n%s\nBestAccountMatch(%q): want ok %t, got %t", tc.reason, tc.name, tc.wantOK, ok)
			}
			if !tc.wantOK {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("\n%s\nBestAccountMatch(%q): -want, +got:\n%s", tc.reason, tc.name, diff)
			}
		})
	}
}
