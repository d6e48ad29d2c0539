// Package service provides the trend service implementation
package service

import (
	"context"
	"sort"
	"strings"

	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/services/trend/domain"
	"keydrill/internal/services/trend/repo"

	"github.com/go-playground/validator/v10"
)

// Config for the trend service
type Config struct {
	// DefaultSessions is the trend window when the caller does not say
	DefaultSessions int

	// DefaultTargetMs is the pace used when a keyboard has no stored target
	DefaultTargetMs float64
}

// Service implements domain.ReaderPort
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[repo.Storage]
	Cfg      Config
	validate *validator.Validate
}

// New constructs a new trend service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("trend service requires a TxRunner")
	}
	if b == nil {
		panic("trend service requires a Storage binder")
	}
	if cfg.DefaultSessions <= 0 {
		cfg.DefaultSessions = domain.DefaultTrendSessions
	}
	if cfg.DefaultTargetMs <= 0 {
		cfg.DefaultTargetMs = 200
	}
	return &Service{DB: db, Binder: b, Cfg: cfg, validate: validator.New()}
}

// SessionPerformanceComparison implements domain.ReaderPort. The service
// picks the pair's two most recent sessions itself; a history shorter than
// two sessions compares to nothing and comes back empty, not as an error.
// Only n-grams measured in BOTH sessions are diffed
func (s *Service) SessionPerformanceComparison(
	ctx context.Context,
	in domain.ComparisonInput,
) ([]domain.ComparisonRow, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "comparison input")
	}

	var latest, previous []domain.SessionRow
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)

		refs, err := r.RecentSessions(ctx, in.UserID, in.KeyboardID, 2)
		if err != nil {
			return err
		}
		if len(refs) < 2 {
			return nil
		}

		if latest, err = r.SessionSpeedRows(ctx, refs[0].ID); err != nil {
			return err
		}
		previous, err = r.SessionSpeedRows(ctx, refs[1].ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	type key struct {
		size int
		text string
	}
	prevByKey := make(map[key]domain.SessionRow, len(previous))
	for _, row := range previous {
		if !rowQualifies(row, in.Sizes, in.IncludedKeys, in.MinOccurrences) {
			continue
		}
		prevByKey[key{row.Size, row.Text}] = row
	}

	var out []domain.ComparisonRow
	for _, row := range latest {
		if !rowQualifies(row, in.Sizes, in.IncludedKeys, in.MinOccurrences) {
			continue
		}
		prev, ok := prevByKey[key{row.Size, row.Text}]
		if !ok {
			continue
		}
		out = append(out, domain.ComparisonRow{
			Size:       row.Size,
			Text:       row.Text,
			LatestMs:   row.AvgMs,
			PreviousMs: prev.AvgMs,
			DeltaMs:    prev.AvgMs - row.AvgMs,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size < out[j].Size
		}
		return out[i].Text < out[j].Text
	})
	return out, nil
}

// MissedTargetsTrend implements domain.ReaderPort: per-session counts of
// qualifying n-gram rows slower than target pace over the last n sessions,
// oldest first. A short or empty history comes back short or empty
func (s *Service) MissedTargetsTrend(
	ctx context.Context,
	in domain.MissedTargetsInput,
) ([]domain.Point, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "missed targets input")
	}
	n := in.NSessions
	if n <= 0 {
		n = s.Cfg.DefaultSessions
	}

	var points []domain.Point
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)

		target, found, err := r.KeyboardTargetMs(ctx, in.KeyboardID)
		if err != nil {
			return err
		}
		if !found {
			target = s.Cfg.DefaultTargetMs
		}

		refs, err := r.RecentSessions(ctx, in.UserID, in.KeyboardID, n)
		if err != nil {
			return err
		}

		points = make([]domain.Point, 0, len(refs))
		for _, ref := range refs {
			rows, err := r.SessionSpeedRows(ctx, ref.ID)
			if err != nil {
				return err
			}

			p := domain.Point{SessionID: ref.ID, EndedAt: ref.EndedAt}
			for _, row := range rows {
				if !rowQualifies(row, in.Sizes, in.IncludedKeys, in.MinOccurrences) {
					continue
				}
				p.Total++
				if row.AvgMs > target {
					p.Missed++
				}
			}
			points = append(points, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// RecentSessions is newest first; plots read oldest first
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// rowQualifies applies the shared qualifying-n-gram definition: restricted
// window widths, composed only of the included keys, meeting the
// occurrence floor
func rowQualifies(row domain.SessionRow, sizes []int, includedKeys string, minOccurrences int) bool {
	if len(sizes) > 0 && !sizeIn(row.Size, sizes) {
		return false
	}
	if minOccurrences > 1 && row.Occurrences < minOccurrences {
		return false
	}
	if includedKeys != "" {
		for _, r := range row.Text {
			if !strings.ContainsRune(includedKeys, r) {
				return false
			}
		}
	}
	return true
}

func sizeIn(size int, sizes []int) bool {
	for _, s := range sizes {
		if s == size {
			return true
		}
	}
	return false
}
