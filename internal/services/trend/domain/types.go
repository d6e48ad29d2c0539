// Package domain defines the types and interfaces for the trend service
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTrendSessions is how many recent sessions a trend covers when the
// caller does not say
const DefaultTrendSessions = 20

// SessionRow is one per-session n-gram measurement
type SessionRow struct {
	Size        int
	Text        string
	AvgMs       float64
	Occurrences int
}

// SessionRef identifies one session in time order
type SessionRef struct {
	ID      uuid.UUID
	EndedAt time.Time
}

// ComparisonInput names the user/keyboard pair whose two most recent
// sessions get diffed, and how to narrow the per-n-gram rows before diffing.
// The sessions themselves are chosen by the service, newest first
type ComparisonInput struct {
	UserID     uuid.UUID `validate:"required"`
	KeyboardID uuid.UUID `validate:"required"`

	// Sizes restricts to these window widths; empty means all
	Sizes []int

	// IncludedKeys keeps only n-grams typed entirely with these characters;
	// empty means no restriction
	IncludedKeys string

	// MinOccurrences drops rows measured fewer times than this in either
	// session; <=1 means no floor
	MinOccurrences int
}

// ComparisonRow is one n-gram present in BOTH sessions. DeltaMs is
// previous minus latest: positive means the n-gram got faster
type ComparisonRow struct {
	Size       int
	Text       string
	LatestMs   float64
	PreviousMs float64
	DeltaMs    float64
}

// MissedTargetsInput selects the sessions for a missed-targets trend
type MissedTargetsInput struct {
	UserID     uuid.UUID `validate:"required"`
	KeyboardID uuid.UUID `validate:"required"`

	// NSessions is how many recent sessions to cover; <=0 takes
	// DefaultTrendSessions
	NSessions int

	// Sizes restricts to these window widths; empty means all
	Sizes []int

	// IncludedKeys keeps only n-grams typed entirely with these characters;
	// empty means no restriction
	IncludedKeys string

	// MinOccurrences drops rows measured fewer times than this in a
	// session; <=1 means no floor
	MinOccurrences int
}

// Point is one session's missed-target count, for plotting oldest first
type Point struct {
	SessionID uuid.UUID
	EndedAt   time.Time

	// Missed counts the session's qualifying n-gram rows slower than
	// target pace
	Missed int

	// Total counts the session's qualifying n-gram rows
	Total int
}
