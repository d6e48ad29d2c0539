// Package domain defines the types and interfaces for the heatmap service
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Band is the pace classification of one n-gram against the target
type Band string

// Band values, fastest to slowest
const (
	BandGreen Band = "green"
	BandAmber Band = "amber"
	BandRed   Band = "red"
)

// Color returns the display hex for the band
func (b Band) Color() string {
	switch b {
	case BandGreen:
		return "#22c55e"
	case BandAmber:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// Thresholds are the band cutoffs, as percent of target pace achieved.
// An n-gram at or above GreenPct is green, at or above AmberPct amber,
// anything slower red
type Thresholds struct {
	GreenPct float64
	AmberPct float64
}

// DefaultThresholds classify at-target as green and within a quarter of
// target as amber
var DefaultThresholds = Thresholds{GreenPct: 100, AmberPct: 75}

// AggregateRow is one stored decaying average, as read from storage
type AggregateRow struct {
	Size         int
	Text         string
	AvgMs        float64
	Samples      int64
	LastMeasured time.Time
}

// ErrorAggRow is one n-gram's total error count across sessions
type ErrorAggRow struct {
	Size  int
	Text  string
	Count int64
}

// Entry is one classified heatmap cell. WPM and TargetPct are derived at
// read time and never stored
type Entry struct {
	Size         int
	Text         string
	AvgMs        float64
	WPM          float64
	Samples      int64
	LastMeasured time.Time

	// TargetPct is percent of target pace achieved: 100 means exactly on
	// target, above 100 faster than target
	TargetPct float64
	Band      Band
	Color     string
}

// Snapshot is one fetched-and-classified view of a user/keyboard pair.
// Filter and Sort are pure: they derive new snapshots without touching
// storage, so a UI can slice one fetch many ways
type Snapshot struct {
	UserID     uuid.UUID
	KeyboardID uuid.UUID
	TargetMs   float64
	Thresholds Thresholds
	Entries    []Entry
}

// FilterOpts narrow a snapshot; zero values mean "no constraint"
type FilterOpts struct {
	Size         int
	Band         Band
	TextContains string
	MinSamples   int64

	// MinAvgMs/MaxAvgMs bound the speed range in ms per char
	MinAvgMs float64
	MaxAvgMs float64
}

// SortKey orders snapshot entries
type SortKey int

// Sort orders
const (
	SortBySpeed     SortKey = iota // slowest first
	SortByTargetPct                // furthest below target first
	SortByText                     // size then text
	SortBySamples                  // most sampled first
	SortByRecency                  // most recently measured first
)

// ExportRow is the flat serialization-ready projection of one entry
type ExportRow struct {
	Size      int     `json:"size"`
	Text      string  `json:"text"`
	AvgMs     float64 `json:"avg_ms"`
	WPM       float64 `json:"wpm"`
	TargetPct float64 `json:"target_pct"`
	Band      string  `json:"band"`
	Color     string  `json:"color"`
	Samples   int64   `json:"samples"`
}

// WeakPointOpts tune the weak-point selector
type WeakPointOpts struct {
	// MinSamples is the confidence floor; entries with fewer samples are
	// ignored no matter how slow they look
	MinSamples int64

	// Size restricts to one window width when >0
	Size int

	// Limit caps the returned texts when >0
	Limit int
}
