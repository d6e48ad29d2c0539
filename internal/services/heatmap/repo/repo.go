// Package repo provides the heatmap repository implementation
package repo

import (
	"context"
	stderrs "errors"

	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/platform/store"
	"keydrill/internal/services/heatmap/domain"

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

// Storage defines the heatmap repository. All reads; the analysis service
// owns every write to these tables
type Storage interface {
	ListCurrentAggregates(ctx context.Context, userID, keyboardID uuid.UUID) ([]domain.AggregateRow, error)
	KeyboardTargetMs(ctx context.Context, keyboardID uuid.UUID) (float64, bool, error)
	SlowestNGrams(ctx context.Context, userID, keyboardID uuid.UUID, size, limit int) ([]domain.AggregateRow, error)
	MostErrorProneNGrams(ctx context.Context, userID, keyboardID uuid.UUID, size, limit int) ([]domain.ErrorAggRow, error)
}

func scanAggregate(r store.Row) (domain.AggregateRow, error) {
	var row domain.AggregateRow
	return row, r.Scan(&row.Size, &row.Text, &row.AvgMs, &row.Samples, &row.LastMeasured)
}

// ListCurrentAggregates implements Storage; no rows is a normal answer
func (s *pg) ListCurrentAggregates(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
) ([]domain.AggregateRow, error) {
	out, err := store.Many(ctx, s.q, scanAggregate, `
		SELECT ngram_size, ngram_text, decaying_average_ms, sample_count, last_measured
		FROM ngram_speed_current
		WHERE user_id = $1 AND keyboard_id = $2
		ORDER BY ngram_size, ngram_text`,
		userID, keyboardID,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list current aggregates")
	}
	return out, nil
}

// KeyboardTargetMs implements Storage; found=false when the keyboard has
// no stored target, which callers treat as "use the default"
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

// SlowestNGrams implements Storage, ordered slowest first
func (s *pg) SlowestNGrams(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	size, limit int,
) ([]domain.AggregateRow, error) {
	out, err := store.Many(ctx, s.q, scanAggregate, `
		SELECT ngram_size, ngram_text, decaying_average_ms, sample_count, last_measured
		FROM ngram_speed_current
		WHERE user_id = $1 AND keyboard_id = $2 AND ngram_size = $3
		ORDER BY decaying_average_ms DESC, ngram_text
		LIMIT $4`,
		userID, keyboardID, size, limit,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "slowest ngrams")
	}
	return out, nil
}

// MostErrorProneNGrams implements Storage, ordered by total error count
// across the pair's sessions
func (s *pg) MostErrorProneNGrams(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	size, limit int,
) ([]domain.ErrorAggRow, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.ErrorAggRow, error) {
		var row domain.ErrorAggRow
		return row, r.Scan(&row.Size, &row.Text, &row.Count)
	}, `
		SELECT se.ngram_size, se.ngram_text, SUM(se.error_count) AS errors
		FROM session_ngram_errors se
		JOIN sessions s ON s.id = se.session_id
		WHERE s.user_id = $1 AND s.keyboard_id = $2 AND se.ngram_size = $3
		GROUP BY se.ngram_size, se.ngram_text
		ORDER BY errors DESC, se.ngram_text
		LIMIT $4`,
		userID, keyboardID, size, limit,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "most error-prone ngrams")
	}
	return out, nil
}
