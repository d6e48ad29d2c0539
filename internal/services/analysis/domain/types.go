// Package domain defines the types and interfaces for the analysis service
package domain

import (
	"time"

	"keydrill/internal/core/ngram"

	"github.com/google/uuid"
)

// Session is the drill-execution record the UI hands us at end of drill.
// The engine consumes it; creating and editing sessions is the UI's job
type Session struct {
	ID          uuid.UUID `validate:"required"`
	UserID      uuid.UUID `validate:"required"`
	KeyboardID  uuid.UUID `validate:"required"`
	StartedAt   time.Time `validate:"required"`
	EndedAt     time.Time `validate:"required,gtefield=StartedAt"`
	ActualChars int       `validate:"gte=0"`
	Errors      int       `validate:"gte=0"`
}

// AnalysisResult is one session's extracted and merged analytics,
// ready to flush to storage in a single transaction
type AnalysisResult struct {
	Session    Session
	Keystrokes []ngram.Keystroke
	Speed      []ngram.SpeedRow
	Errors     []ngram.ErrorRow

	// WindowCount is the total number of windows examined across sizes
	WindowCount int
}

// AggregateUpdate reports one fold of a session sample into the
// long-lived decaying average
type AggregateUpdate struct {
	Size   int
	Text   string
	AvgMs  float64
	Fresh  bool // true when the aggregate row was created by this fold
	SeenAt time.Time
}

// ReplaySample is one historical per-session measurement, replayed in
// session time order when aggregates are rebuilt from scratch
type ReplaySample struct {
	Size    int
	Text    string
	AvgMs   float64
	EndedAt time.Time
}

// Summary is the per-category persistence report returned to the caller
// so the UI can show partial progress without blocking continued use
type Summary struct {
	SessionSaved       bool
	KeystrokesSavedRaw int
	KeystrokesSavedNet int
	NGramsSaved        bool
	NGramCount         int
	SessionSummaryRows int
	CurrUpdated        int
	HistInserted       int
}
