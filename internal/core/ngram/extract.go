package ngram

import (
	"strings"

	perr "keydrill/internal/platform/errors"
)

// Extract slides a width-s window (step 1) over the ordered keystroke
// stream for every requested size and returns the classified windows.
// A stream of length L yields exactly L-s+1 windows per size s <= L.
//
// Contract violations (size out of range, keystrokes out of time order)
// fail fast with a validation error before any window is produced
func Extract(keystrokes []Keystroke, sizes []int) ([]Window, error) {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	for _, s := range sizes {
		if s < MinSize || s > MaxSize {
			return nil, perr.Validationf("ngram size %d out of range [%d,%d]", s, MinSize, MaxSize)
		}
	}
	if err := checkOrdering(keystrokes); err != nil {
		return nil, err
	}

	var out []Window
	for _, s := range sizes {
		if s > len(keystrokes) {
			continue
		}
		for i := 0; i+s <= len(keystrokes); i++ {
			out = append(out, window(keystrokes[i:i+s], s))
		}
	}
	return out, nil
}

// checkOrdering rejects streams whose timestamps run backwards
func checkOrdering(ks []Keystroke) error {
	for i := 1; i < len(ks); i++ {
		if ks[i].PressedAt.Before(ks[i-1].PressedAt) {
			return perr.Validationf("keystroke %d pressed before keystroke %d: stream is not time-ordered", i, i-1)
		}
	}
	return nil
}

// window classifies one contiguous slice of size s
func window(ks []Keystroke, s int) Window {
	var b strings.Builder
	b.Grow(s)

	clean := true
	valid := true
	var total int64

	for i, k := range ks {
		b.WriteRune(k.Typed)
		switch k.Kind {
		case KindError, KindBackspace:
			clean = false
		case KindNormal:
			// keeps the window clean
		}
		if i > 0 {
			// the interval leading into the window's first keystroke is excluded
			if k.SincePrevMs <= 0 {
				valid = false
			} else {
				total += k.SincePrevMs
			}
		}
	}
	if !clean {
		valid = false
	}

	return Window{
		Text:        b.String(),
		Size:        s,
		TotalTimeMs: total,
		Clean:       clean,
		Valid:       valid,
		Errorful:    !clean && !allBackspaces(ks),
	}
}

// allBackspaces reports whether every keystroke in the window slice is a
// correction with no typing signal at all
func allBackspaces(ks []Keystroke) bool {
	for _, k := range ks {
		if k.Kind != KindBackspace {
			return false
		}
	}
	return len(ks) > 0
}
