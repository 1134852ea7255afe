package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/warhall/tmeta/internal/ingest"
)

type MockStore struct {
	MockHasImportHash func(ctx context.Context, hash string) (bool, error)
}

func (m *MockStore) HasImportHash(ctx context.Context, hash string) (bool, error) {
	return m.MockHasImportHash(ctx, hash)
}

type MockImporter struct {
	MockImport func(ctx context.Context, p ingest.Params) (ingest.Result, error)
}

func (m *MockImporter) Import(ctx context.Context, p ingest.Params) (ingest.Result, error) {
	return m.MockImport(ctx, p)
}

func writeExport(t *testing.T, root string, parts ...string) {
	t.Helper()

	path := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("rank,player,faction\n1,Alice,Orks\n"), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "2025-Q2", "A", "2025-04-01--Spring Open.csv")
	writeExport(t, root, "2025-Q2", "C", "league-standings.csv")
	writeExport(t, root, "2025-Q3", "A", "2025-07-01--Summer Clash.csv")
	// Not a CSV; must be ignored.
	writeExport(t, root, "2025-Q3", "A", "README.md")

	var imported []ingest.Params
	store := &MockStore{
		MockHasImportHash: func(_ context.Context, _ string) (bool, error) { return false, nil },
	}
	importer := &MockImporter{
		MockImport: func(_ context.Context, p ingest.Params) (ingest.Result, error) {
			imported = append(imported, p)
			return ingest.Result{ImportID: "imp", Imported: 1}, nil
		},
	}

	c := NewClient(root)
	n, err := c.load(context.Background(), store, importer)
	if err != nil {
		t.Fatalf("load(...): %v", err)
	}
	if n != 3 {
		t.Errorf("load(...): want 3 files imported, got %d", n)
	}

	want := []ingest.Params{
		{
			Raw:        "rank,player,faction\n1,Alice,Orks\n",
			Format:     "A",
			EventName:  "Spring Open",
			EventDate:  "2025-04-01",
			MetaWindow: "2025-Q2",
			ImportedBy: "archive-sync",
		},
		{
			Raw:        "rank,player,faction\n1,Alice,Orks\n",
			Format:     "C",
			EventName:  "league-standings",
			MetaWindow: "2025-Q2",
			ImportedBy: "archive-sync",
		},
		{
			Raw:        "rank,player,faction\n1,Alice,Orks\n",
			Format:     "A",
			EventName:  "Summer Clash",
			EventDate:  "2025-07-01",
			MetaWindow: "2025-Q3",
			ImportedBy: "archive-sync",
		},
	}
	if diff := cmp.Diff(want, imported); diff != "" {
		t.Errorf("load(...): -want, +got:\n%s", diff)
	}
}

func TestLoadSkipsSeenFiles(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "2025-Q2", "A", "2025-04-01--Spring Open.csv")

	store := &MockStore{
		MockHasImportHash: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}
	importer := &MockImporter{
		MockImport: func(_ context.Context, _ ingest.Params) (ingest.Result, error) {
			t.Fatal("Import should not be called for an already-ingested file")
			return ingest.Result{}, nil
		},
	}

	n, err := NewClient(root).load(context.Background(), store, importer)
	if err != nil {
		t.Fatalf("load(...): %v", err)
	}
	if n != 0 {
		t.Errorf("load(...): want 0 files imported, got %d", n)
	}
}

func TestLoadMissingArchive(t *testing.T) {
	// A sync against a path that was never cloned imports nothing.
	c := NewClient(filepath.Join(t.TempDir(), "nonexistent"))

	n, err := c.load(context.Background(), &MockStore{}, &MockImporter{})
	if err != nil {
		t.Fatalf("load(...): %v", err)
	}
	if n != 0 {
		t.Errorf("load(...): want 0 files imported, got %d", n)
	}
}

func TestSplitExportName(t *testing.T) {
	cases := map[string]struct {
		reason   string
		filename string
		wantDate string
		wantName string
	}{
		"DateAndEvent": {
			reason:   "The separator splits date from event name.",
			filename: "2025-04-01--Spring Open.csv",
			wantDate: "2025-04-01",
			wantName: "Spring Open",
		},
		"NoSeparator": {
			reason:   "Files without the separator carry only an event name.",
			filename: "league-standings.csv",
			wantName: "league-standings",
		},
		"EventWithDashes": {
			reason:   "Only the first separator splits; dashes in the event survive.",
			filename: "2025-04-01--spring--open.csv",
			wantDate: "2025-04-01",
			wantName: "spring--open",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			date, event := splitExportName(tc.filename)

			if date != tc.wantDate || event != tc.wantName {
				t.Errorf("\n%s\nsplitExportName(%q): want (%q, %q), got (%q, %q)",
					tc.reason, tc.filename, tc.wantDate, tc.wantName, date, event)
			}
		})
	}
}
