// Package service provides the heatmap service implementation
package service

import (
	"context"

	"keydrill/internal/core/ngram"
	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/services/heatmap/domain"
	"keydrill/internal/services/heatmap/repo"

	"github.com/google/uuid"
)

// Config for the heatmap service
type Config struct {
	// Thresholds are the band cutoffs; zero values take DefaultThresholds
	Thresholds domain.Thresholds

	// DefaultTargetMs is the pace used when a keyboard has no stored target
	DefaultTargetMs float64

	// WeakMinSamples is the weak-point confidence floor
	WeakMinSamples int64

	// HardLimit caps the slowest/error-prone list sizes
	HardLimit int
}

// Service implements the heatmap read ports
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// New constructs a new heatmap service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("heatmap service requires a TxRunner")
	}
	if b == nil {
		panic("heatmap service requires a Storage binder")
	}
	if cfg.Thresholds.GreenPct <= 0 {
		cfg.Thresholds = domain.DefaultThresholds
	}
	if cfg.DefaultTargetMs <= 0 {
		cfg.DefaultTargetMs = 200
	}
	if cfg.WeakMinSamples <= 0 {
		cfg.WeakMinSamples = domain.DefaultWeakMinSamples
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 100
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// SpeedHeatmapData fetches one classified snapshot for a user/keyboard
// pair. A user with no data gets an empty snapshot, not an error; further
// slicing happens in memory via Snapshot.Filter/Sort/Export
func (s *Service) SpeedHeatmapData(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)

		target, found, err := r.KeyboardTargetMs(ctx, keyboardID)
		if err != nil {
			return err
		}
		if !found {
			target = s.Cfg.DefaultTargetMs
		}

		rows, err := r.ListCurrentAggregates(ctx, userID, keyboardID)
		if err != nil {
			return err
		}

		snap = domain.Snapshot{
			UserID:     userID,
			KeyboardID: keyboardID,
			TargetMs:   target,
			Thresholds: s.Cfg.Thresholds,
			Entries:    domain.Classify(rows, target, s.Cfg.Thresholds),
		}
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// SlowestNGrams lists the slowest aggregates of one size, slowest first
func (s *Service) SlowestNGrams(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	size, limit int,
) ([]domain.AggregateRow, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var out []domain.AggregateRow
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).SlowestNGrams(ctx, userID, keyboardID, size, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MostErrorProneNGrams lists the n-grams with the highest total error
// counts across the pair's sessions
func (s *Service) MostErrorProneNGrams(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	size, limit int,
) ([]domain.ErrorAggRow, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var out []domain.ErrorAggRow
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).MostErrorProneNGrams(ctx, userID, keyboardID, size, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WeakPoints fetches a snapshot and runs the selector over it
func (s *Service) WeakPoints(
	ctx context.Context,
	userID, keyboardID uuid.UUID,
	opts domain.WeakPointOpts,
) ([]string, error) {
	if opts.MinSamples <= 0 {
		opts.MinSamples = s.Cfg.WeakMinSamples
	}
	snap, err := s.SpeedHeatmapData(ctx, userID, keyboardID)
	if err != nil {
		return nil, err
	}
	return domain.WeakPoints(snap, opts), nil
}

func checkSize(size int) error {
	if size < ngram.MinSize || size > ngram.MaxSize {
		return perr.InvalidArgf("ngram size %d out of range [%d,%d]", size, ngram.MinSize, ngram.MaxSize)
	}
	return nil
}
