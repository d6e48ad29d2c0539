// Package migrate applies the engine's schema. Statements are idempotent
// so startup can run them unconditionally
package migrate

import (
	"context"

	perr "keydrill/internal/platform/errors"
	"keydrill/internal/platform/store"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		keyboard_id UUID NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL,
		actual_chars INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_keyboard_ended
		ON sessions (user_id, keyboard_id, ended_at)`,

	`CREATE TABLE IF NOT EXISTS session_keystrokes (
		session_id UUID NOT NULL,
		idx INTEGER NOT NULL,
		typed TEXT NOT NULL,
		expected TEXT NOT NULL,
		kind TEXT NOT NULL,
		pressed_at TIMESTAMPTZ NOT NULL,
		since_prev_ms BIGINT NOT NULL,
		net BOOLEAN NOT NULL,
		PRIMARY KEY (session_id, idx)
	)`,

	`CREATE TABLE IF NOT EXISTS session_ngram_speed (
		session_id UUID NOT NULL,
		ngram_size INTEGER NOT NULL,
		ngram_text TEXT NOT NULL,
		ngram_time_ms DOUBLE PRECISION NOT NULL,
		occurrences INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (session_id, ngram_size, ngram_text)
	)`,

	`CREATE TABLE IF NOT EXISTS session_ngram_errors (
		session_id UUID NOT NULL,
		ngram_size INTEGER NOT NULL,
		ngram_text TEXT NOT NULL,
		error_count INTEGER NOT NULL,
		PRIMARY KEY (session_id, ngram_size, ngram_text)
	)`,

	`CREATE TABLE IF NOT EXISTS ngram_speed_current (
		user_id UUID NOT NULL,
		keyboard_id UUID NOT NULL,
		ngram_size INTEGER NOT NULL,
		ngram_text TEXT NOT NULL,
		decaying_average_ms DOUBLE PRECISION NOT NULL,
		sample_count BIGINT NOT NULL,
		last_measured TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, keyboard_id, ngram_size, ngram_text)
	)`,

	`CREATE TABLE IF NOT EXISTS ngram_speed_history (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL,
		keyboard_id UUID NOT NULL,
		ngram_size INTEGER NOT NULL,
		ngram_text TEXT NOT NULL,
		decaying_average_ms DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ngram_speed_history_key
		ON ngram_speed_history (user_id, keyboard_id, ngram_size, ngram_text, recorded_at)`,

	`CREATE TABLE IF NOT EXISTS keyboards (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		target_ms_per_keystroke DOUBLE PRECISION NOT NULL
	)`,
}

// Apply runs every schema statement against the given querier
func Apply(ctx context.Context, q store.RowQuerier) error {
	for _, stmt := range statements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgresf(err, "apply schema")
		}
	}
	return nil
}
