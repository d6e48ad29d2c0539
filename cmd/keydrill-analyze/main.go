// Command keydrill-analyze runs end-of-session analysis for a keystroke
// log and flushes the results to the store. With -rebuild it instead
// recomputes a user/keyboard pair's aggregates from stored session rows
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"keydrill/internal/core/ngram"
	"keydrill/internal/modkit"
	"keydrill/internal/modkit/repokit"
	"keydrill/internal/platform/config"
	"keydrill/internal/platform/logger"
	"keydrill/internal/platform/store"
	"keydrill/internal/platform/store/migrate"

	andom "keydrill/internal/services/analysis/domain"
	anmod "keydrill/internal/services/analysis/module"

	"github.com/google/uuid"
)

// sessionLog is the JSON shape produced by the drill UI at end of session
type sessionLog struct {
	Session struct {
		ID          uuid.UUID `json:"id"`
		UserID      uuid.UUID `json:"user_id"`
		KeyboardID  uuid.UUID `json:"keyboard_id"`
		StartedAt   time.Time `json:"started_at"`
		EndedAt     time.Time `json:"ended_at"`
		ActualChars int       `json:"actual_chars"`
		Errors      int       `json:"errors"`
	} `json:"session"`
	Keystrokes []struct {
		Index       int       `json:"index"`
		Typed       string    `json:"typed"`
		Expected    string    `json:"expected"`
		Kind        string    `json:"kind"`
		PressedAt   time.Time `json:"pressed_at"`
		SincePrevMs int64     `json:"since_prev_ms"`
	} `json:"keystrokes"`
}

func main() {
	var (
		input       = flag.String("input", "", "path to a session keystroke log (JSON)")
		saveSession = flag.Bool("save-session", true, "persist the session row and raw keystrokes too")
		applySchema = flag.Bool("migrate", true, "apply the schema before writing")
		rebuild     = flag.Bool("rebuild", false, "rebuild aggregates instead of analyzing a log")
		userStr     = flag.String("user", "", "user id (rebuild mode)")
		keyboardStr = flag.String("keyboard", "", "keyboard id (rebuild mode)")
	)
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		AppName: "keydrill-analyze",
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

	if *applySchema {
		if err := migrate.Apply(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
	}

	deps := modkit.Deps{Cfg: root, PG: st.PG, Log: *l}
	ports := anmod.New(deps).Ports()

	if *rebuild {
		userID, err := uuid.Parse(*userStr)
		if err != nil {
			log.Fatalf("bad -user: %v", err)
		}
		keyboardID, err := uuid.Parse(*keyboardStr)
		if err != nil {
			log.Fatalf("bad -keyboard: %v", err)
		}
		n, err := ports.Maintenance.RebuildAggregates(ctx, userID, keyboardID)
		if err != nil {
			l.Fatal().Err(err).Msg("rebuild failed")
		}
		l.Info().Int("aggregates", n).Msg("rebuild complete")
		return
	}

	if *input == "" {
		log.Fatal("-input is required")
	}
	sess, keystrokes, err := readLog(*input)
	if err != nil {
		log.Fatalf("bad -input: %v", err)
	}

	sum, err := ports.Persister.ProcessEndOfSession(ctx, sess, keystrokes, *saveSession)
	if err != nil {
		l.Fatal().Err(err).Str("session_id", sess.ID.String()).Msg("analysis failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		l.Fatal().Err(err).Msg("encode summary")
	}
}

func readLog(path string) (andom.Session, []ngram.Keystroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return andom.Session{}, nil, err
	}
	var in sessionLog
	if err := json.Unmarshal(data, &in); err != nil {
		return andom.Session{}, nil, err
	}

	sess := andom.Session{
		ID:          in.Session.ID,
		UserID:      in.Session.UserID,
		KeyboardID:  in.Session.KeyboardID,
		StartedAt:   in.Session.StartedAt,
		EndedAt:     in.Session.EndedAt,
		ActualChars: in.Session.ActualChars,
		Errors:      in.Session.Errors,
	}

	ks := make([]ngram.Keystroke, 0, len(in.Keystrokes))
	for _, k := range in.Keystrokes {
		ks = append(ks, ngram.Keystroke{
			Index:       k.Index,
			Typed:       firstRune(k.Typed),
			Expected:    firstRune(k.Expected),
			PressedAt:   k.PressedAt,
			SincePrevMs: k.SincePrevMs,
			Kind:        ngram.KindFromString(k.Kind),
		})
	}
	return sess, ks, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
