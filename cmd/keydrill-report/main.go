// Command keydrill-report prints analytics views for a user/keyboard pair:
// the banded heatmap, slowest or most error-prone n-grams, weak points,
// a two-session comparison, or the missed-targets trend
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"keydrill/internal/modkit"
	"keydrill/internal/modkit/repokit"
	"keydrill/internal/platform/config"
	"keydrill/internal/platform/logger"
	"keydrill/internal/platform/store"

	hmdom "keydrill/internal/services/heatmap/domain"
	hmmod "keydrill/internal/services/heatmap/module"
	trdom "keydrill/internal/services/trend/domain"
	trmod "keydrill/internal/services/trend/module"

	"github.com/google/uuid"
)

func main() {
	var (
		view        = flag.String("view", "heatmap", "heatmap | slowest | errors | weak | compare | trend")
		userStr     = flag.String("user", "", "user id")
		keyboardStr = flag.String("keyboard", "", "keyboard id")
		size        = flag.Int("size", 2, "ngram size (slowest/errors views)")
		limit       = flag.Int("limit", 20, "row cap for list views")
		band        = flag.String("band", "", "filter heatmap to one band (green|amber|red)")
		minMs       = flag.Float64("min-ms", 0, "filter heatmap to averages at or above this (ms/char)")
		maxMs       = flag.Float64("max-ms", 0, "filter heatmap to averages at or below this (ms/char)")
		sortKey     = flag.String("sort", "speed", "heatmap order: speed | target | text | samples | recency")
		sessions    = flag.Int("sessions", 0, "trend window; 0 takes the configured default")
		keys        = flag.String("keys", "", "restrict compare/trend to ngrams typed with these characters")
		minOcc      = flag.Int("min-occurrences", 0, "compare/trend occurrence floor per session")
	)
	flag.Parse()

	userID, err := uuid.Parse(*userStr)
	if err != nil {
		log.Fatalf("bad -user: %v", err)
	}
	keyboardID, err := uuid.Parse(*keyboardStr)
	if err != nil {
		log.Fatalf("bad -keyboard: %v", err)
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		AppName: "keydrill-report",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(ctx, st)

	deps := modkit.Deps{Cfg: root, PG: st.PG, Log: *l}
	heat := hmmod.New(deps).Ports().Reader
	trend := trmod.New(deps).Ports().Reader

	var out any
	switch *view {
	case "heatmap":
		snap, err := heat.SpeedHeatmapData(ctx, userID, keyboardID)
		if err != nil {
			l.Fatal().Err(err).Msg("heatmap fetch failed")
		}
		snap = snap.Filter(hmdom.FilterOpts{
			Band:     hmdom.Band(*band),
			MinAvgMs: *minMs,
			MaxAvgMs: *maxMs,
		}).Sort(parseSort(*sortKey))
		out = snap.Export()

	case "slowest":
		out, err = heat.SlowestNGrams(ctx, userID, keyboardID, *size, *limit)
		if err != nil {
			l.Fatal().Err(err).Msg("slowest fetch failed")
		}

	case "errors":
		out, err = heat.MostErrorProneNGrams(ctx, userID, keyboardID, *size, *limit)
		if err != nil {
			l.Fatal().Err(err).Msg("error-prone fetch failed")
		}

	case "weak":
		out, err = heat.WeakPoints(ctx, userID, keyboardID, hmdom.WeakPointOpts{Limit: *limit})
		if err != nil {
			l.Fatal().Err(err).Msg("weak points fetch failed")
		}

	case "compare":
		out, err = trend.SessionPerformanceComparison(ctx, trdom.ComparisonInput{
			UserID:         userID,
			KeyboardID:     keyboardID,
			IncludedKeys:   *keys,
			MinOccurrences: *minOcc,
		})
		if err != nil {
			l.Fatal().Err(err).Msg("comparison failed")
		}

	case "trend":
		out, err = trend.MissedTargetsTrend(ctx, trdom.MissedTargetsInput{
			UserID:         userID,
			KeyboardID:     keyboardID,
			NSessions:      *sessions,
			IncludedKeys:   *keys,
			MinOccurrences: *minOcc,
		})
		if err != nil {
			l.Fatal().Err(err).Msg("trend failed")
		}

	default:
		log.Fatalf("unknown -view %q", *view)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		l.Fatal().Err(err).Msg("encode report")
	}
}

func parseSort(s string) hmdom.SortKey {
	switch s {
	case "target":
		return hmdom.SortByTargetPct
	case "text":
		return hmdom.SortByText
	case "samples":
		return hmdom.SortBySamples
	case "recency":
		return hmdom.SortByRecency
	default:
		return hmdom.SortBySpeed
	}
}
