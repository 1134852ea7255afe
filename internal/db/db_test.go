package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/warhall/tmeta/internal/record"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open(...): %v", err)
	}
	t.Cleanup(func() { store.Close() }) //nolint:errcheck // Test cleanup.

	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init(...): %v", err)
	}
	return store
}

func TestImports(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := Import{
		ID:         "imp-1",
		ImportedBy: "cli",
		EventName:  "Spring Open",
		EventDate:  "2025-04-01",
		Format:     "A",
		MetaWindow: "2025-Q2",
		RawData:    "rank,player,faction\n1,Alice,Orks\n",
		ParsedData: []byte("[]"),
		RawHash:    "hash-1",
		CreatedAt:  "2025-04-02T10:00:00Z",
	}
	// Ingested first but for a later event; replay order must put it last.
	second := Import{
		ID:         "imp-2",
		ImportedBy: "cli",
		EventName:  "Summer Clash",
		EventDate:  "2025-07-01",
		Format:     "A",
		MetaWindow: "2025-Q3",
		ParsedData: []byte("[]"),
		RawHash:    "hash-2",
		CreatedAt:  "2025-04-01T09:00:00Z",
	}

	for _, imp := range []Import{second, first} {
		if err := store.InsertImport(ctx, imp); err != nil {
			t.Fatalf("InsertImport(%s): %v", imp.ID, err)
		}
	}

	got, err := store.GetImport(ctx, "imp-1")
	if err != nil {
		t.Fatalf("GetImport(imp-1): %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("GetImport(imp-1): -want, +got:\n%s", diff)
	}

	if _, err := store.GetImport(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetImport(nonexistent): want ErrNotFound, got %v", err)
	}

	imports, err := store.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports(...): %v", err)
	}
	want := []string{"imp-1", "imp-2"}
	ids := make([]string, 0, len(imports))
	for _, imp := range imports {
		ids = append(ids, imp.ID)
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ListImports(...) should order by event date, not ingestion time: -want, +got:\n%s", diff)
	}

	for hash, want := range map[string]bool{"hash-1": true, "hash-3": false} {
		has, err := store.HasImportHash(ctx, hash)
		if err != nil {
			t.Fatalf("HasImportHash(%s): %v", hash, err)
		}
		if has != want {
			t.Errorf("HasImportHash(%s): want %t, got %t", hash, want, has)
		}
	}

	windows, err := store.ListWindows(ctx)
	if err != nil {
		t.Fatalf("ListWindows(...): %v", err)
	}
	if diff := cmp.Diff([]string{"2025-Q2", "2025-Q3"}, windows); diff != "" {
		t.Errorf("ListWindows(...): -want, +got:\n%s", diff)
	}
}

func TestGlickoPlayers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := GlickoPlayer{ID: "p-1", Name: "Alice", Rating: 1500, Deviation: 350, Volatility: 0.06}
	if err := store.InsertGlickoPlayer(ctx, alice); err != nil {
		t.Fatalf("InsertGlickoPlayer(Alice): %v", err)
	}

	got, err := store.GetGlickoPlayerByName(ctx, "aLiCe")
	if err != nil {
		t.Fatalf("GetGlickoPlayerByName(aLiCe): %v", err)
	}
	if diff := cmp.Diff(alice, got); diff != "" {
		t.Errorf("GetGlickoPlayerByName(...) should match case-insensitively: -want, +got:\n%s", diff)
	}

	if _, err := store.GetGlickoPlayerByName(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGlickoPlayerByName(Nobody): want ErrNotFound, got %v", err)
	}

	if err := store.UpdateGlickoPlayer(ctx, GlickoPlayer{ID: "p-missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateGlickoPlayer(p-missing): want ErrNotFound, got %v", err)
	}

	if err := store.UpsertAccount(ctx, Account{ID: "a-1", Username: "alice_w"}); err != nil {
		t.Fatalf("UpsertAccount(alice_w): %v", err)
	}
	linked, err := store.LinkGlickoPlayer(ctx, "p-1", "a-1")
	if err != nil {
		t.Fatalf("LinkGlickoPlayer(p-1, a-1): %v", err)
	}
	if linked.AccountID != "a-1" {
		t.Errorf("LinkGlickoPlayer(...): want account a-1, got %q", linked.AccountID)
	}
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	players := []GlickoPlayer{
		{ID: "p-1", Name: "Alice", Rating: 1620, Deviation: 120, Volatility: 0.06, GamesPlayed: 10},
		{ID: "p-2", Name: "Bob", Rating: 1620, Deviation: 90, Volatility: 0.06, GamesPlayed: 12},
		{ID: "p-3", Name: "Carol", Rating: 1700, Deviation: 200, Volatility: 0.06, GamesPlayed: 5},
		// Never rated; must not appear.
		{ID: "p-4", Name: "Dave", Rating: 1500, Deviation: 350, Volatility: 0.06},
	}
	for _, p := range players {
		if err := store.InsertGlickoPlayer(ctx, p); err != nil {
			t.Fatalf("InsertGlickoPlayer(%s): %v", p.Name, err)
		}
	}

	cases := map[string]struct {
		reason string
		limit  int
		want   []string
	}{
		"Unlimited": {
			reason: "Rated players order by rating descending, then lower deviation.",
			want:   []string{"Carol", "Bob", "Alice"},
		},
		"Limited": {
			reason: "A positive limit truncates the board.",
			limit:  2,
			want:   []string{"Carol", "Bob"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			board, err := store.Leaderboard(ctx, tc.limit)
			if err != nil {
				t.Fatalf("Leaderboard(%d): %v", tc.limit, err)
			}

			names := make([]string, 0, len(board))
			for _, p := range board {
				names = append(names, p.Name)
			}
			if diff := cmp.Diff(tc.want, names); diff != "" {
				t.Errorf("\n%s\nLeaderboard(%d): -want, +got:\n%s", tc.reason, tc.limit, diff)
			}
		})
	}
}

func TestResetGlickoPlayers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.InsertImport(ctx, Import{
		ID: "imp-1", ImportedBy: "cli", EventName: "GT", EventDate: "2025-06-01",
		Format: "A", MetaWindow: "2025-Q2", ParsedData: []byte("[]"),
		RawHash: "h", CreatedAt: "2025-06-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("InsertImport(...): %v", err)
	}
	if err := store.InsertGlickoPlayer(ctx, GlickoPlayer{
		ID: "p-1", Name: "Alice", Rating: 1650, Deviation: 100, Volatility: 0.059,
		GamesPlayed: 5, LastRatingPeriod: "imp-1",
	}); err != nil {
		t.Fatalf("InsertGlickoPlayer(...): %v", err)
	}
	if err := store.InsertHistory(ctx, HistoryEntry{
		PlayerID: "p-1", ImportID: "imp-1", RatingBefore: 1500, RatingAfter: 1650,
		DeviationBefore: 350, DeviationAfter: 100, VolatilityAfter: 0.059,
		Delta: 150, Games: 5, CreatedAt: "2025-06-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("InsertHistory(...): %v", err)
	}

	if err := store.ResetGlickoPlayers(ctx); err != nil {
		t.Fatalf("ResetGlickoPlayers(...): %v", err)
	}

	got, err := store.GetGlickoPlayer(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetGlickoPlayer(p-1): %v", err)
	}
	want := GlickoPlayer{ID: "p-1", Name: "Alice", Rating: 1500, Deviation: 350, Volatility: 0.06}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResetGlickoPlayers(...) should restore the default triple: -want, +got:\n%s", diff)
	}

	n, err := store.CountHistory(ctx)
	if err != nil {
		t.Fatalf("CountHistory(...): %v", err)
	}
	if n != 0 {
		t.Errorf("ResetGlickoPlayers(...) should delete history: want 0 rows, got %d", n)
	}
}

func TestLoadRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	payload, err := record.Encode([]record.TournamentRecord{{
		EventName: "Spring Open",
		EventDate: "2025-04-01",
		Players:   []record.TournamentPlayer{{Placement: 1, Faction: "Orks", PlayerName: "Alice", Wins: 5}},
	}})
	if err != nil {
		t.Fatalf("Encode(...): %v", err)
	}

	imports := []Import{
		{ID: "imp-1", ImportedBy: "cli", EventName: "Spring Open", EventDate: "2025-04-01",
			Format: "A", MetaWindow: "2025-Q2", ParsedData: payload, RawHash: "h1",
			CreatedAt: "2025-04-02T10:00:00Z"},
		// Corrupt payload; reads must skip it, not fail.
		{ID: "imp-2", ImportedBy: "cli", EventName: "Bad", EventDate: "2025-04-03",
			Format: "A", MetaWindow: "2025-Q2", ParsedData: []byte("{not json"), RawHash: "h2",
			CreatedAt: "2025-04-04T10:00:00Z"},
		{ID: "imp-3", ImportedBy: "cli", EventName: "Other Window", EventDate: "2025-07-01",
			Format: "B", MetaWindow: "2025-Q3", ParsedData: payload, RawHash: "h3",
			CreatedAt: "2025-07-02T10:00:00Z"},
	}
	for _, imp := range imports {
		if err := store.InsertImport(ctx, imp); err != nil {
			t.Fatalf("InsertImport(%s): %v", imp.ID, err)
		}
	}

	cases := map[string]struct {
		reason string
		window string
		format string
		want   int
	}{
		"All": {
			reason: "With no filters every decodable import contributes records.",
			want:   2,
		},
		"ByWindow": {
			reason: "The window filter restricts to one meta window.",
			window: "2025-Q3",
			want:   1,
		},
		"ByFormat": {
			reason: "The format filter restricts to one dialect.",
			format: "A",
			want:   1,
		},
		"NoMatch": {
			reason: "A window with no imports yields no records.",
			window: "1999-Q1",
			want:   0,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := store.LoadRecords(ctx, tc.window, tc.format)
			if err != nil {
				t.Fatalf("LoadRecords(%q, %q): %v", tc.window, tc.format, err)
			}
			if len(got) != tc.want {
				t.Errorf("\n%s\nLoadRecords(%q, %q): want %d records, got %d",
					tc.reason, tc.window, tc.format, tc.want, len(got))
			}
		})
	}
}

func TestTxRollback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	boom := errors.New("boom")
	err := store.Tx(ctx, func(tx *SQLiteStore) error {
		if err := tx.InsertGlickoPlayer(ctx, GlickoPlayer{
			ID: "p-1", Name: "Alice", Rating: 1500, Deviation: 350, Volatility: 0.06,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Tx(...): want boom, got %v", err)
	}

	if _, err := store.GetGlickoPlayer(ctx, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Tx(...) should roll back on error: want ErrNotFound, got %v", err)
	}
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.UpsertAccount(ctx, Account{ID: "a-1", Username: "alice_w", DisplayName: "Alice"}); err != nil {
		t.Fatalf("UpsertAccount(alice_w): %v", err)
	}
	// Same username again updates the display name in place.
	if err := store.UpsertAccount(ctx, Account{ID: "a-other", Username: "alice_w", DisplayName: "Alice W"}); err != nil {
		t.Fatalf("UpsertAccount(alice_w) again: %v", err)
	}

	got, err := store.GetAccountByUsername(ctx, "alice_w")
	if err != nil {
		t.Fatalf("GetAccountByUsername(alice_w): %v", err)
	}
	want := Account{ID: "a-1", Username: "alice_w", DisplayName: "Alice W"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetAccountByUsername(alice_w): -want, +got:\n%s", diff)
	}

	if _, err := store.GetAccountByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccountByUsername(nobody): want ErrNotFound, got %v", err)
	}
}
