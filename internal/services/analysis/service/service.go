// Package service provides the analysis service implementation
package service

import (
	"context"
	"time"

	"keydrill/internal/core/ngram"
	"keydrill/internal/modkit/repokit"
	perr "keydrill/internal/platform/errors"
	"keydrill/internal/platform/logger"
	"keydrill/internal/services/analysis/domain"
	"keydrill/internal/services/analysis/repo"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Config for the analysis service
type Config struct {
	// DecayAlpha is the fold weight of a new measurement; defaults to
	// ngram.DefaultDecayAlpha if <=0 or >=1
	DecayAlpha float64

	// Sizes are the window widths to extract; defaults to ngram.DefaultSizes
	Sizes []int
}

// Service implements domain.AnalyzerPort, domain.PersisterPort and
// domain.MaintenancePort
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[repo.Storage]
	Cfg      Config
	validate *validator.Validate
}

// New constructs a new analysis service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("analysis service requires a TxRunner")
	}
	if b == nil {
		panic("analysis service requires a Storage binder")
	}
	if cfg.DecayAlpha <= 0 || cfg.DecayAlpha >= 1 {
		cfg.DecayAlpha = ngram.DefaultDecayAlpha
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = ngram.DefaultSizes
	}
	return &Service{DB: db, Binder: b, Cfg: cfg, validate: validator.New()}
}

// Analyze implements domain.AnalyzerPort. It never touches storage: bad
// input fails here, before anything is written
func (s *Service) Analyze(
	ctx context.Context,
	session domain.Session,
	keystrokes []ngram.Keystroke,
) (domain.AnalysisResult, error) {
	if err := s.validate.StructCtx(ctx, session); err != nil {
		return domain.AnalysisResult{}, perr.Wrapf(err, perr.ErrorCodeValidation, "session %s", session.ID)
	}

	windows, err := ngram.Extract(keystrokes, s.Cfg.Sizes)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	speed, errRows := ngram.Merge(windows)

	return domain.AnalysisResult{
		Session:     session,
		Keystrokes:  keystrokes,
		Speed:       speed,
		Errors:      errRows,
		WindowCount: len(windows),
	}, nil
}

// SaveToDatabase implements domain.PersisterPort. Everything lands in one
// transaction; re-running for an already-recorded session is a no-op
// success (the returned summary then reports nothing saved)
func (s *Service) SaveToDatabase(ctx context.Context, result domain.AnalysisResult) (domain.Summary, error) {
	if err := s.validate.StructCtx(ctx, result.Session); err != nil {
		return domain.Summary{}, perr.Wrapf(err, perr.ErrorCodeValidation, "session %s", result.Session.ID)
	}

	sum, err := s.persist(ctx, result, false)
	if err != nil {
		return domain.Summary{}, perr.WithOp(err, "analysis.save")
	}
	return sum, nil
}

// ProcessEndOfSession implements domain.PersisterPort: analyze then flush.
// saveSessionFirst makes this call also persist the session row and raw
// keystroke stream; leave it false when the caller already stored those
func (s *Service) ProcessEndOfSession(
	ctx context.Context,
	session domain.Session,
	keystrokes []ngram.Keystroke,
	saveSessionFirst bool,
) (domain.Summary, error) {
	ctx = logger.WithSession(ctx, session.ID.String(), session.UserID.String())

	result, err := s.Analyze(ctx, session, keystrokes)
	if err != nil {
		return domain.Summary{}, err
	}

	sum, err := s.persist(ctx, result, saveSessionFirst)
	if err != nil {
		return domain.Summary{}, perr.WithOp(err, "analysis.process_end_of_session")
	}

	logger.C(ctx).Debug().
		Int("windows", result.WindowCount).
		Int("speed_rows", sum.SessionSummaryRows).
		Int("aggregates", sum.CurrUpdated).
		Bool("ngrams_saved", sum.NGramsSaved).
		Msg("end of session processed")
	return sum, nil
}

// persistAttempts bounds re-runs of the persistence transaction when it
// loses to concurrent writers on the same aggregate keys (serialization
// failure, deadlock); the whole transaction re-runs from the
// SessionRecorded check, so a retry can never double-write
const persistAttempts = 3

func (s *Service) persist(
	ctx context.Context,
	result domain.AnalysisResult,
	saveSessionFirst bool,
) (domain.Summary, error) {
	var sum domain.Summary
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		sum = domain.Summary{}
		err = repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
			return s.saveTx(ctx, s.Binder.Bind(q), result, saveSessionFirst, &sum)
		})
		if err == nil || !perr.Retryable(err) {
			break
		}
		logger.C(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("session persistence lost to contention, retrying")
	}
	return sum, err
}

// saveTx is the single-transaction body shared by the persistence entry
// points. q must already be bound to the transaction
func (s *Service) saveTx(
	ctx context.Context,
	r repo.Storage,
	result domain.AnalysisResult,
	saveSessionFirst bool,
	sum *domain.Summary,
) error {
	recorded, err := r.SessionRecorded(ctx, result.Session.ID)
	if err != nil {
		return err
	}
	if recorded {
		logger.C(ctx).Debug().
			Str("session_id", result.Session.ID.String()).
			Msg("session already recorded, skipping")
		sum.NGramsSaved = true
		return nil
	}

	if saveSessionFirst {
		saved, err := r.InsertSession(ctx, result.Session)
		if err != nil {
			return err
		}
		sum.SessionSaved = saved

		raw, net, err := r.InsertKeystrokes(ctx, result.Session.ID, result.Keystrokes)
		if err != nil {
			return err
		}
		sum.KeystrokesSavedRaw = raw
		sum.KeystrokesSavedNet = net
	}

	speedSaved, err := r.InsertSpeedRows(ctx, result.Session.ID, result.Speed)
	if err != nil {
		return err
	}
	if _, err := r.InsertErrorRows(ctx, result.Session.ID, result.Errors); err != nil {
		return err
	}
	sum.SessionSummaryRows = speedSaved
	sum.NGramCount = len(result.Speed) + len(result.Errors)

	at := result.Session.EndedAt
	for _, row := range result.Speed {
		upd, err := r.FoldAggregate(ctx, result.Session.UserID, result.Session.KeyboardID, row, s.Cfg.DecayAlpha, at)
		if err != nil {
			return err
		}
		sum.CurrUpdated++

		if err := r.InsertHistory(ctx, result.Session.UserID, result.Session.KeyboardID, upd); err != nil {
			return err
		}
		sum.HistInserted++
	}

	sum.NGramsSaved = true
	return nil
}

// RebuildAggregates implements domain.MaintenancePort. It recomputes
// ngram_speed_current from the per-session rows by replaying them through
// the same recurrence in session end order. History is append-only and is
// left alone. Nothing on the normal write path calls this
func (s *Service) RebuildAggregates(ctx context.Context, userID, keyboardID uuid.UUID) (int, error) {
	type key struct {
		size int
		text string
	}
	type acc struct {
		avg     float64
		samples int
		last    time.Time
	}

	var rebuilt int
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)

		samples, err := r.ListReplaySamples(ctx, userID, keyboardID)
		if err != nil {
			return err
		}
		if _, err := r.DeleteCurrentAggregates(ctx, userID, keyboardID); err != nil {
			return err
		}

		folded := make(map[key]*acc, len(samples))
		for _, m := range samples {
			k := key{size: m.Size, text: m.Text}
			a, ok := folded[k]
			if !ok {
				folded[k] = &acc{avg: m.AvgMs, samples: 1, last: m.EndedAt}
				continue
			}
			a.avg = ngram.DecayAverage(a.avg, m.AvgMs, s.Cfg.DecayAlpha)
			a.samples++
			a.last = m.EndedAt
		}

		for k, a := range folded {
			if err := r.WriteCurrentAggregate(ctx, userID, keyboardID, k.size, k.text, a.avg, a.samples, a.last); err != nil {
				return err
			}
		}
		rebuilt = len(folded)
		return nil
	})
	if err != nil {
		return 0, perr.WithOp(err, "analysis.rebuild")
	}

	logger.C(ctx).Info().
		Str("user_id", userID.String()).
		Str("keyboard_id", keyboardID.String()).
		Int("aggregates", rebuilt).
		Msg("aggregates rebuilt")
	return rebuilt, nil
}
