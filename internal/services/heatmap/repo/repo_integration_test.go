//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"keydrill/internal/platform/store"
	"keydrill/internal/platform/store/migrate"
	anrepo "keydrill/internal/services/analysis/repo"
	"keydrill/internal/services/heatmap/repo"

	"github.com/google/uuid"
)

// openTestStore connects to the database named by KEYDRILL_TEST_PGURL.
// Provisioning (docker compose, CI service container) is the caller's job
func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := os.Getenv("KEYDRILL_TEST_PGURL")
	if dsn == "" {
		t.Skip("KEYDRILL_TEST_PGURL not set; skipping pg integration test")
	}

	st, err := store.Open(context.Background(), store.Config{
		AppName: "keydrill-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := migrate.Apply(context.Background(), st.PG); err != nil {
		t.Fatalf("migrate.Apply: %v", err)
	}
	return st
}

func TestSlowestNGrams_OrderedSlowestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	userID, keyboardID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	seed := anrepo.NewPG().Bind(st.PG)
	for text, avg := range map[string]float64{"Th": 300, "he": 500, "en": 250} {
		if err := seed.WriteCurrentAggregate(ctx, userID, keyboardID, 2, text, avg, 3, now); err != nil {
			t.Fatalf("seed aggregate %q: %v", text, err)
		}
	}
	// a different size must never leak into a size-2 listing
	if err := seed.WriteCurrentAggregate(ctx, userID, keyboardID, 3, "the", 900, 3, now); err != nil {
		t.Fatalf("seed aggregate the: %v", err)
	}

	hb := repo.NewPG().Bind(st.PG)

	rows, err := hb.SlowestNGrams(ctx, userID, keyboardID, 2, 10)
	if err != nil {
		t.Fatalf("SlowestNGrams: %v", err)
	}
	want := []string{"he", "Th", "en"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, text := range want {
		if rows[i].Text != text {
			t.Fatalf("row %d = %q, want %q (slowest first)", i, rows[i].Text, text)
		}
	}

	// the limit caps the listing without disturbing the order
	top, err := hb.SlowestNGrams(ctx, userID, keyboardID, 2, 2)
	if err != nil {
		t.Fatalf("SlowestNGrams limit: %v", err)
	}
	if len(top) != 2 || top[0].Text != "he" || top[1].Text != "Th" {
		t.Fatalf("limited rows wrong: %+v", top)
	}
}
