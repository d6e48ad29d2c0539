//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"keydrill/internal/core/ngram"
	"keydrill/internal/platform/store"
	"keydrill/internal/platform/store/migrate"
	"keydrill/internal/services/analysis/domain"
	"keydrill/internal/services/analysis/repo"
	"keydrill/internal/services/analysis/service"

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

func keystrokesFor(text string, gapMs int64) []ngram.Keystroke {
	at := time.Now().UTC().Truncate(time.Second)
	ks := make([]ngram.Keystroke, 0, len(text))
	for i, r := range text {
		gap := gapMs
		if i == 0 {
			gap = 0
		}
		at = at.Add(time.Duration(gap) * time.Millisecond)
		ks = append(ks, ngram.Keystroke{
			Index: i, Typed: r, Expected: r, PressedAt: at, SincePrevMs: gap, Kind: ngram.KindNormal,
		})
	}
	return ks
}

func TestEndOfSessionRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	svc := service.New(st.PG, repo.NewPG(), service.Config{})

	start := time.Now().UTC().Add(-time.Minute)
	sess := domain.Session{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		KeyboardID: uuid.New(),
		StartedAt:  start,
		EndedAt:    start.Add(30 * time.Second),
	}

	sum, err := svc.ProcessEndOfSession(ctx, sess, keystrokesFor("then", 100), true)
	if err != nil {
		t.Fatalf("ProcessEndOfSession: %v", err)
	}
	if !sum.SessionSaved || sum.SessionSummaryRows != 6 || sum.CurrUpdated != 6 {
		t.Fatalf("first run summary wrong: %+v", sum)
	}

	// the exact same call again must change nothing
	again, err := svc.ProcessEndOfSession(ctx, sess, keystrokesFor("then", 100), true)
	if err != nil {
		t.Fatalf("idempotent re-run: %v", err)
	}
	if again.SessionSummaryRows != 0 || again.CurrUpdated != 0 || again.HistInserted != 0 {
		t.Fatalf("re-run must be a no-op: %+v", again)
	}

	// aggregates exist for the pair
	b := repo.NewPG().Bind(st.PG)
	samples, err := b.ListReplaySamples(ctx, sess.UserID, sess.KeyboardID)
	if err != nil {
		t.Fatalf("ListReplaySamples: %v", err)
	}
	if len(samples) != 6 {
		t.Fatalf("replay samples = %d, want 6", len(samples))
	}
}

func TestFoldAggregateRecurrence(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	b := repo.NewPG().Bind(st.PG)
	userID, keyboardID := uuid.New(), uuid.New()
	row := ngram.SpeedRow{Size: 2, Text: "th", AvgMsPerChar: 200, Occurrences: 1}
	now := time.Now().UTC()

	first, err := b.FoldAggregate(ctx, userID, keyboardID, row, 0.2, now)
	if err != nil {
		t.Fatalf("first fold: %v", err)
	}
	if !first.Fresh || first.AvgMs != 200 {
		t.Fatalf("first fold wrong: %+v", first)
	}

	row.AvgMsPerChar = 100
	second, err := b.FoldAggregate(ctx, userID, keyboardID, row, 0.2, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second fold: %v", err)
	}
	if second.Fresh {
		t.Fatalf("second fold must update, not insert")
	}
	// 200*0.8 + 100*0.2 = 180
	if second.AvgMs != 180 {
		t.Fatalf("second fold avg = %v, want 180", second.AvgMs)
	}
}
