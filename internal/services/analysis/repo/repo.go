// Package repo provides the analysis repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"keydrill/internal/core/ngram"
	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/platform/store"
	"keydrill/internal/services/analysis/domain"

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

// Storage defines the analysis repository
type Storage interface {
	SessionRecorded(ctx context.Context, sessionID uuid.UUID) (bool, error)
	InsertSession(ctx context.Context, s domain.Session) (bool, error)
	InsertKeystrokes(ctx context.Context, sessionID uuid.UUID, ks []ngram.Keystroke) (raw int, net int, err error)
	InsertSpeedRows(ctx context.Context, sessionID uuid.UUID, rows []ngram.SpeedRow) (int, error)
	InsertErrorRows(ctx context.Context, sessionID uuid.UUID, rows []ngram.ErrorRow) (int, error)
	FoldAggregate(
		ctx context.Context,
		userID, keyboardID uuid.UUID,
		row ngram.SpeedRow,
		alpha float64,
		at time.Time,
	) (domain.AggregateUpdate, error)
	InsertHistory(ctx context.Context, userID, keyboardID uuid.UUID, u domain.AggregateUpdate) error
	ListReplaySamples(ctx context.Context, userID, keyboardID uuid.UUID) ([]domain.ReplaySample, error)
	DeleteCurrentAggregates(ctx context.Context, userID, keyboardID uuid.UUID) (int64, error)
	WriteCurrentAggregate(
		ctx context.Context,
		userID, keyboardID uuid.UUID,
		size int,
		text string,
		avgMs float64,
		samples int,
		last time.Time,
	) error
}

// SessionRecorded reports whether a session already has persisted n-gram
// rows; re-running persistence for such a session is a no-op
func (s *pg) SessionRecorded(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	exists, err := store.Scalar[bool](ctx, s.q,
		`SELECT EXISTS (SELECT 1 FROM session_ngram_speed WHERE session_id = $1)
			OR EXISTS (SELECT 1 FROM session_ngram_errors WHERE session_id = $1)`,
		sessionID,
	)
	if err != nil {
		return false, perr.FromPostgresf(err, "session recorded check %s", sessionID)
	}
	return exists, nil
}

// InsertSession implements Storage; returns false when the row already existed
func (s *pg) InsertSession(ctx context.Context, sess domain.Session) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO sessions (id, user_id, keyboard_id, started_at, ended_at, actual_chars, errors)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		sess.ID, sess.UserID, sess.KeyboardID, sess.StartedAt, sess.EndedAt, sess.ActualChars, sess.Errors,
	)
	if err != nil {
		return false, perr.FromPostgresf(err, "insert session %s", sess.ID)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertKeystrokes writes the raw event stream and flags the net survivors
// (keystrokes a later backspace did not erase). Returns raw and net counts
func (s *pg) InsertKeystrokes(
	ctx context.Context,
	sessionID uuid.UUID,
	ks []ngram.Keystroke,
) (int, int, error) {
	if len(ks) == 0 {
		return 0, 0, nil
	}

	mask := ngram.NetMask(ks)
	net := 0

	var sb strings.Builder
	sb.WriteString(`INSERT INTO session_keystrokes
		(session_id, idx, typed, expected, kind, pressed_at, since_prev_ms, net) VALUES `)

	args := make([]any, 0, len(ks)*8)
	for i, k := range ks {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		if mask[i] {
			net++
		}
		args = append(args,
			sessionID, k.Index, runeText(k.Typed), runeText(k.Expected),
			k.Kind.String(), k.PressedAt, k.SincePrevMs, mask[i],
		)
	}
	sb.WriteString(` ON CONFLICT (session_id, idx) DO NOTHING`)

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return 0, 0, perr.FromPostgresf(err, "insert keystrokes for session %s", sessionID)
	}
	return len(ks), net, nil
}

// InsertSpeedRows implements Storage. Rows are already merged per distinct
// (size, text), so a re-run of the same session conflicts on every row and
// writes nothing
func (s *pg) InsertSpeedRows(ctx context.Context, sessionID uuid.UUID, rows []ngram.SpeedRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO session_ngram_speed
		(session_id, ngram_size, ngram_text, ngram_time_ms, occurrences) VALUES `)

	args := make([]any, 0, len(rows)*5)
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*5 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4)
		args = append(args, sessionID, r.Size, r.Text, r.AvgMsPerChar, r.Occurrences)
	}
	sb.WriteString(` ON CONFLICT (session_id, ngram_size, ngram_text) DO NOTHING`)

	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgresf(err, "insert speed rows for session %s", sessionID)
	}
	return int(tag.RowsAffected()), nil
}

// InsertErrorRows implements Storage
func (s *pg) InsertErrorRows(ctx context.Context, sessionID uuid.UUID, rows []ngram.ErrorRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO session_ngram_errors
		(session_id, ngram_size, ngram_text, error_count) VALUES `)

	args := make([]any, 0, len(rows)*4)
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*4 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", base, base+1, base+2, base+3)
		args = append(args, sessionID, r.Size, r.Text, r.Count)
	}
	sb.WriteString(` ON CONFLICT (session_id, ngram_size, ngram_text) DO NOTHING`)

	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgresf(err, "insert error rows for session %s", sessionID)
	}
	return int(tag.RowsAffected()), nil
}

// FoldAggregate folds one session measurement into the long-lived decaying
// average as a single atomic statement. The arithmetic runs server-side
// against the stored value, so two writers folding concurrently both land:
// read-modify-write in Go would let the second overwrite the first
func (s *pg) FoldAggregate(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	row ngram.SpeedRow,
	alpha float64,
	at time.Time,
) (domain.AggregateUpdate, error) {
	var avg float64
	var samples int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO ngram_speed_current
			(user_id, keyboard_id, ngram_size, ngram_text, decaying_average_ms, sample_count, last_measured)
		VALUES ($1,$2,$3,$4,$5,1,$6)
		ON CONFLICT (user_id, keyboard_id, ngram_size, ngram_text) DO UPDATE SET
			decaying_average_ms = ngram_speed_current.decaying_average_ms * (1 - $7) + EXCLUDED.decaying_average_ms * $7,
			sample_count  = ngram_speed_current.sample_count + 1,
			last_measured = EXCLUDED.last_measured
		RETURNING decaying_average_ms, sample_count`,
		userID, keyboardID, row.Size, row.Text, row.AvgMsPerChar, at, alpha,
	).Scan(&avg, &samples)
	if err != nil {
		return domain.AggregateUpdate{}, perr.FromPostgresf(err, "fold aggregate %d:%q", row.Size, row.Text)
	}
	return domain.AggregateUpdate{
		Size:   row.Size,
		Text:   row.Text,
		AvgMs:  avg,
		Fresh:  samples == 1,
		SeenAt: at,
	}, nil
}

// InsertHistory appends the post-fold average. History is append-only;
// nothing in the engine ever deletes from it
func (s *pg) InsertHistory(ctx context.Context, userID, keyboardID uuid.UUID, u domain.AggregateUpdate) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO ngram_speed_history
			(user_id, keyboard_id, ngram_size, ngram_text, decaying_average_ms, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		userID, keyboardID, u.Size, u.Text, u.AvgMs, u.SeenAt,
	)
	if err != nil {
		return perr.FromPostgresf(err, "insert history %d:%q", u.Size, u.Text)
	}
	return nil
}

// ListReplaySamples returns every per-session measurement for the pair, in
// session end order, for the maintenance rebuild path
func (s *pg) ListReplaySamples(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
) ([]domain.ReplaySample, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.ReplaySample, error) {
		var m domain.ReplaySample
		return m, r.Scan(&m.Size, &m.Text, &m.AvgMs, &m.EndedAt)
	}, `
		SELECT sn.ngram_size, sn.ngram_text, sn.ngram_time_ms, s.ended_at
		FROM session_ngram_speed sn
		JOIN sessions s ON s.id = sn.session_id
		WHERE s.user_id = $1 AND s.keyboard_id = $2
		ORDER BY s.ended_at, s.id, sn.ngram_size, sn.ngram_text`,
		userID, keyboardID,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list replay samples")
	}
	return out, nil
}

// DeleteCurrentAggregates clears the derived table for a rebuild. Only the
// maintenance path calls this; history stays untouched
func (s *pg) DeleteCurrentAggregates(ctx context.Context, userID, keyboardID uuid.UUID) (int64, error) {
	tag, err := s.q.Exec(ctx,
		`DELETE FROM ngram_speed_current WHERE user_id = $1 AND keyboard_id = $2`,
		userID, keyboardID,
	)
	if err != nil {
		return 0, perr.FromPostgresf(err, "delete current aggregates")
	}
	return tag.RowsAffected(), nil
}

// WriteCurrentAggregate writes one rebuilt aggregate row wholesale
func (s *pg) WriteCurrentAggregate(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	size int,
	text string,
	avgMs float64,
	samples int,
	last time.Time,
) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO ngram_speed_current
			(user_id, keyboard_id, ngram_size, ngram_text, decaying_average_ms, sample_count, last_measured)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, keyboard_id, ngram_size, ngram_text) DO UPDATE SET
			decaying_average_ms = EXCLUDED.decaying_average_ms,
			sample_count  = EXCLUDED.sample_count,
			last_measured = EXCLUDED.last_measured`,
		userID, keyboardID, size, text, avgMs, samples, last,
	)
	if err != nil {
		return perr.FromPostgresf(err, "write rebuilt aggregate %d:%q", size, text)
	}
	return nil
}

// runeText renders a keystroke rune for storage; backspaces carry no glyph
func runeText(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}
