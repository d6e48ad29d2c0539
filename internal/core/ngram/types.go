// Package ngram extracts fixed-width character windows from a completed
// typing session's keystroke stream and classifies them for speed and
// error analytics
package ngram

import "time"

// Window sizes supported by the extractor
const (
	MinSize = 2
	MaxSize = 5
)

// DefaultSizes covers every supported window width
var DefaultSizes = []int{2, 3, 4, 5}

// Kind tags how a keystroke relates to the drill text.
// A tagged variant (rather than two independent booleans) keeps the
// classifier's switch exhaustively checkable
type Kind uint8

const (
	// KindNormal is a regular keystroke, correct or not per Typed vs Expected
	KindNormal Kind = iota
	// KindError is a keystroke the drill marked as a mistake
	KindError
	// KindBackspace is a correction keystroke that removed prior input
	KindBackspace
)

// String returns the storage spelling of the kind
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindBackspace:
		return "backspace"
	default:
		return "normal"
	}
}

// KindFromString parses the storage spelling back into a Kind
func KindFromString(s string) Kind {
	switch s {
	case "error":
		return KindError
	case "backspace":
		return KindBackspace
	default:
		return KindNormal
	}
}

// Keystroke is one event of the session's ordered input stream.
// Immutable once recorded; owned by its session
type Keystroke struct {
	// Index is the text position the keystroke landed on
	Index int
	// Typed is the character the user produced
	Typed rune
	// Expected is the character the drill text asked for
	Expected rune
	// PressedAt is when the key went down
	PressedAt time.Time
	// SincePrevMs is the interval from the previous keystroke in the
	// stream; zero or negative means the interval was not recorded
	// (always the case for the first keystroke of a session)
	SincePrevMs int64
	// Kind tags the keystroke as normal, error, or backspace
	Kind Kind
}

// Window is one ephemeral width-s slice of the keystroke stream.
// Windows are recomputed per analysis run and never persisted directly;
// only their merged session rows are
type Window struct {
	// Text is the concatenation of the typed characters, so clean
	// windows carry text equal to the expected substring
	Text string
	// Size is the window width s
	Size int
	// TotalTimeMs is the sum of the s-1 intervals strictly inside the
	// window; the interval leading into the first keystroke is excluded
	TotalTimeMs int64
	// Clean means no keystroke in the window is an error or backspace
	Clean bool
	// Valid means Clean and every internal interval was a recorded
	// positive value; timing is meaningful only when Valid
	Valid bool
	// Errorful means the window carries at least one error or backspace
	// keystroke plus some typing signal, so it lands in the error bucket.
	// A window of nothing but backspaces is neither Clean nor Errorful
	Errorful bool
}

// AvgPerCharMs is the per-character time of the window.
// Only meaningful when Valid
func (w Window) AvgPerCharMs() float64 {
	if w.Size == 0 {
		return 0
	}
	return float64(w.TotalTimeMs) / float64(w.Size)
}

// SpeedRow is the merged per-session speed row for one (size, text):
// the occurrence-weighted average per-character time across every valid
// occurrence in the session
type SpeedRow struct {
	Size         int
	Text         string
	AvgMsPerChar float64
	Occurrences  int
}

// ErrorRow is the merged per-session error row for one (size, text)
type ErrorRow struct {
	Size  int
	Text  string
	Count int
}
