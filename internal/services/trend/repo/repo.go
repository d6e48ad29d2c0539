// Package repo provides the trend repository implementation
package repo

import (
	"context"
	stderrs "errors"

	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/platform/store"
	"keydrill/internal/services/trend/domain"

	"github.com/google/uuid"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the trend repository
type Storage interface {
	SessionSpeedRows(ctx context.Context, sessionID uuid.UUID) ([]domain.SessionRow, error)
	RecentSessions(ctx context.Context, userID, keyboardID uuid.UUID, n int) ([]domain.SessionRef, error)
	KeyboardTargetMs(ctx context.Context, keyboardID uuid.UUID) (float64, bool, error)
}

// SessionSpeedRows implements Storage; an unknown session yields no rows
func (s *pg) SessionSpeedRows(ctx context.Context, sessionID uuid.UUID) ([]domain.SessionRow, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.SessionRow, error) {
		var row domain.SessionRow
		return row, r.Scan(&row.Size, &row.Text, &row.AvgMs, &row.Occurrences)
	}, `
		SELECT ngram_size, ngram_text, ngram_time_ms, occurrences
		FROM session_ngram_speed
		WHERE session_id = $1
		ORDER BY ngram_size, ngram_text`,
		sessionID,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "session speed rows %s", sessionID)
	}
	return out, nil
}

// RecentSessions implements Storage, newest first, at most n
func (s *pg) RecentSessions(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	n int,
) ([]domain.SessionRef, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.SessionRef, error) {
		var ref domain.SessionRef
		return ref, r.Scan(&ref.ID, &ref.EndedAt)
	}, `
		SELECT id, ended_at
		FROM sessions
		WHERE user_id = $1 AND keyboard_id = $2
		ORDER BY ended_at DESC, id DESC
		LIMIT $3`,
		userID, keyboardID, n,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "recent sessions")
	}
	return out, nil
}

// KeyboardTargetMs implements Storage; found=false when no target is stored
func (s *pg) KeyboardTargetMs(ctx context.Context, keyboardID uuid.UUID) (float64, bool, error) {
	target, err := store.One(ctx, s.q, func(r store.Row) (float64, error) {
		var t float64
		return t, r.Scan(&t)
	},
		`SELECT target_ms_per_keystroke FROM keyboards WHERE id = $1`,
		keyboardID,
	)
	if err != nil {
		if stderrs.Is(err, perr.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, perr.FromPostgresf(err, "keyboard target %s", keyboardID)
	}
	return target, true, nil
}
