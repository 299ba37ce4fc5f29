package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"avsync-monitor/internal/core"
	"avsync-monitor/internal/features/avsync/models"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *DatabaseService {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewDatabaseService(core.NewDatabase(db, core.NewLogger()))
	if err := svc.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	return svc
}

func TestUpsertAndGetActiveSites(t *testing.T) {
	svc := newTestDB(t)
	ctx := context.Background()

	sites := []models.Site{
		{ID: "ber-2", Name: "Berlin OB Van 2", Endpoint: ""},
		{ID: "ams-1", Name: "Amsterdam Studio 1", Endpoint: "http://ams1.example.net:8090"},
	}
	for _, site := range sites {
		if err := svc.UpsertSite(ctx, site); err != nil {
			t.Fatalf("UpsertSite() err=%v", err)
		}
	}

	active, err := svc.GetActiveSites()
	if err != nil {
		t.Fatalf("GetActiveSites() err=%v", err)
	}

	if len(active) != 2 {
		t.Fatalf("expected 2 active sites, got %d", len(active))
	}
	// Ordered by name
	if active[0].ID != "ams-1" || active[1].ID != "ber-2" {
		t.Errorf("unexpected ordering: %s, %s", active[0].ID, active[1].ID)
	}
}

func TestUpsertUpdatesEndpoint(t *testing.T) {
	svc := newTestDB(t)
	ctx := context.Background()

	if err := svc.UpsertSite(ctx, models.Site{ID: "ams-1", Name: "Amsterdam", Endpoint: ""}); err != nil {
		t.Fatalf("UpsertSite() err=%v", err)
	}
	if err := svc.UpsertSite(ctx, models.Site{ID: "ams-1", Name: "Amsterdam", Endpoint: "http://ams:8090"}); err != nil {
		t.Fatalf("UpsertSite() err=%v", err)
	}

	site, err := svc.GetSiteByID("ams-1")
	if err != nil {
		t.Fatalf("GetSiteByID() err=%v", err)
	}
	if site == nil {
		t.Fatal("expected site to exist")
	}
	if site.Endpoint != "http://ams:8090" {
		t.Errorf("expected updated endpoint, got %q", site.Endpoint)
	}
}

func TestGetSiteByIDUnknown(t *testing.T) {
	svc := newTestDB(t)

	site, err := svc.GetSiteByID("nope")
	if err != nil {
		t.Fatalf("GetSiteByID() err=%v", err)
	}
	if site != nil {
		t.Fatalf("expected nil for unknown site, got %+v", site)
	}
}

func TestSeedFromFile(t *testing.T) {
	svc := newTestDB(t)
	ctx := context.Background()

	// Pre-register a site the seed file no longer lists.
	if err := svc.UpsertSite(ctx, models.Site{ID: "old-9", Name: "Decommissioned", Endpoint: "http://old"}); err != nil {
		t.Fatalf("UpsertSite() err=%v", err)
	}

	seedPath := filepath.Join(t.TempDir(), "sites.yaml")
	seed := `sites:
  - id: "ams-1"
    name: "Amsterdam Studio 1"
    endpoint: "http://ams1.example.net:8090"
  - id: "ber-2"
    name: "Berlin OB Van 2"
    endpoint: ""
`
	if err := os.WriteFile(seedPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	count, err := svc.SeedFromFile(ctx, seedPath)
	if err != nil {
		t.Fatalf("SeedFromFile() err=%v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 seeded sites, got %d", count)
	}

	active, err := svc.GetActiveSites()
	if err != nil {
		t.Fatalf("GetActiveSites() err=%v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected removed site to be deactivated, got %d active", len(active))
	}

	// The removed site still exists in the registry, just inactive.
	old, err := svc.GetSiteByID("old-9")
	if err != nil {
		t.Fatalf("GetSiteByID() err=%v", err)
	}
	if old == nil {
		t.Fatal("expected deactivated site to remain registered")
	}
	if old.IsActive {
		t.Error("expected removed site to be inactive")
	}
}

func TestSeedFileValidation(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		body string
	}{
		{"missing id", "sites:\n  - name: \"No ID\"\n"},
		{"missing name", "sites:\n  - id: \"x-1\"\n"},
		{"duplicate id", "sites:\n  - id: \"x-1\"\n    name: \"A\"\n  - id: \"x-1\"\n    name: \"B\"\n"},
		{"not yaml", "{{{{"},
	}

	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".yaml")
		if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
			t.Fatalf("failed to write seed file: %v", err)
		}
		if _, err := ParseSeedFile(path); err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}
