package ngram

import "sort"

// Merge folds one session's classified windows into the rows that get
// persisted: one occurrence-weighted speed row per distinct valid
// (size, text) and one error row per distinct errorful (size, text).
// The same text may appear in both buckets within one session when it
// was typed correctly some times and incorrectly others
func Merge(windows []Window) ([]SpeedRow, []ErrorRow) {
	type key struct {
		size int
		text string
	}

	type acc struct {
		totalMs     int64
		occurrences int
	}

	speed := make(map[key]*acc)
	errs := make(map[key]int)

	for _, w := range windows {
		k := key{size: w.Size, text: w.Text}
		if w.Valid {
			a, ok := speed[k]
			if !ok {
				a = &acc{}
				speed[k] = a
			}
			a.totalMs += w.TotalTimeMs
			a.occurrences++
		}
		if w.Errorful {
			errs[k]++
		}
	}

	speedRows := make([]SpeedRow, 0, len(speed))
	for k, a := range speed {
		speedRows = append(speedRows, SpeedRow{
			Size:         k.size,
			Text:         k.text,
			AvgMsPerChar: float64(a.totalMs) / float64(a.occurrences) / float64(k.size),
			Occurrences:  a.occurrences,
		})
	}
	errRows := make([]ErrorRow, 0, len(errs))
	for k, n := range errs {
		errRows = append(errRows, ErrorRow{Size: k.size, Text: k.text, Count: n})
	}

	// deterministic output order: size then text
	sort.Slice(speedRows, func(i, j int) bool {
		if speedRows[i].Size != speedRows[j].Size {
			return speedRows[i].Size < speedRows[j].Size
		}
		return speedRows[i].Text < speedRows[j].Text
	})
	sort.Slice(errRows, func(i, j int) bool {
		if errRows[i].Size != errRows[j].Size {
			return errRows[i].Size < errRows[j].Size
		}
		return errRows[i].Text < errRows[j].Text
	})

	return speedRows, errRows
}

// NetMask marks which keystrokes survive backspace corrections: each
// backspace removes itself and the nearest surviving prior keystroke
func NetMask(ks []Keystroke) []bool {
	mask := make([]bool, len(ks))
	stack := make([]int, 0, len(ks))
	for i, k := range ks {
		if k.Kind == KindBackspace {
			if n := len(stack); n > 0 {
				mask[stack[n-1]] = false
				stack = stack[:n-1]
			}
			continue
		}
		mask[i] = true
		stack = append(stack, i)
	}
	return mask
}

// NetLength returns how many keystrokes survive backspace corrections
func NetLength(ks []Keystroke) int {
	n := 0
	for _, kept := range NetMask(ks) {
		if kept {
			n++
		}
	}
	return n
}
