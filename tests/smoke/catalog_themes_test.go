//go:build smoke

package smoke

import (
	"context"
	"database/sql"
	"testing"

	"github.com/tentlabs/tentshop/internal/catalog"
	"github.com/tentlabs/tentshop/internal/seed"
	"github.com/tentlabs/tentshop/internal/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	db := testutil.NewTestDB(t)

	expectedTables := []string{
		"theme_documents",
		"active_selection",
	}

	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
			table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			t.Fatalf("missing expected table %q after migrations", table)
		}
		if err != nil {
			t.Fatalf("query table %q existence: %v", table, err)
		}
	}
}

func TestPredefinedThemesSeeded(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	expected, err := catalog.Predefined()
	if err != nil {
		t.Fatalf("parse themes file: %v", err)
	}

	if _, err := seed.Run(ctx, db.Queries); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stored, err := db.Queries.ListThemes(ctx)
	if err != nil {
		t.Fatalf("list themes: %v", err)
	}
	if len(stored) != len(expected) {
		t.Fatalf("seeded theme count mismatch: got %d want %d", len(stored), len(expected))
	}

	expectedByID := make(map[string]string, len(expected))
	for _, theme := range expected {
		expectedByID[theme.ID] = theme.LightMode.Palette.Primary
	}
	for _, theme := range stored {
		primary, ok := expectedByID[theme.ID]
		if !ok {
			t.Fatalf("unexpected seeded theme %q", theme.ID)
		}
		if theme.LightMode.Palette.Primary != primary {
			t.Fatalf("theme %q primary color mismatch: got %q want %q",
				theme.ID, theme.LightMode.Palette.Primary, primary)
		}
		if err := theme.Validate(); err != nil {
			t.Fatalf("seeded theme %q failed validation: %v", theme.ID, err)
		}
	}
}

func TestSeedIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := seed.Run(ctx, db.Queries); err != nil {
			t.Fatalf("seed pass %d: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM theme_documents WHERE is_custom = 0").Scan(&count); err != nil {
		t.Fatalf("count predefined themes: %v", err)
	}
	if want := len(catalog.MustPredefined()); count != want {
		t.Fatalf("predefined count after reseed: got %d want %d", count, want)
	}

	var distinct int
	if err := db.QueryRow("SELECT COUNT(DISTINCT theme_id) FROM theme_documents").Scan(&distinct); err != nil {
		t.Fatalf("count distinct theme ids: %v", err)
	}
	if distinct != count {
		t.Fatalf("theme id duplication detected: %d total, %d distinct", count, distinct)
	}
}
