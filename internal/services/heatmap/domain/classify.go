package domain

import (
	"sort"
	"strings"

	"keydrill/internal/core/ngram"
)

// Classify turns stored aggregate rows into a banded snapshot. A target of
// zero or less classifies everything red with TargetPct 0, since no pace
// comparison is possible
func Classify(rows []AggregateRow, targetMs float64, th Thresholds) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			Size:         r.Size,
			Text:         r.Text,
			AvgMs:        r.AvgMs,
			WPM:          ngram.WPMFromMsPerChar(r.AvgMs),
			Samples:      r.Samples,
			LastMeasured: r.LastMeasured,
		}
		if targetMs > 0 && r.AvgMs > 0 {
			e.TargetPct = targetMs / r.AvgMs * 100
		}
		e.Band = bandFor(e.TargetPct, th)
		e.Color = e.Band.Color()
		out = append(out, e)
	}
	return out
}

func bandFor(targetPct float64, th Thresholds) Band {
	switch {
	case targetPct >= th.GreenPct:
		return BandGreen
	case targetPct >= th.AmberPct:
		return BandAmber
	default:
		return BandRed
	}
}

// Filter derives a narrowed snapshot; the receiver is left untouched
func (s Snapshot) Filter(opts FilterOpts) Snapshot {
	kept := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if opts.Size > 0 && e.Size != opts.Size {
			continue
		}
		if opts.Band != "" && e.Band != opts.Band {
			continue
		}
		if opts.TextContains != "" && !strings.Contains(e.Text, opts.TextContains) {
			continue
		}
		if opts.MinSamples > 0 && e.Samples < opts.MinSamples {
			continue
		}
		if opts.MinAvgMs > 0 && e.AvgMs < opts.MinAvgMs {
			continue
		}
		if opts.MaxAvgMs > 0 && e.AvgMs > opts.MaxAvgMs {
			continue
		}
		kept = append(kept, e)
	}
	out := s
	out.Entries = kept
	return out
}

// Sort derives a reordered snapshot; ties fall back to size then text so
// output is deterministic
func (s Snapshot) Sort(key SortKey) Snapshot {
	es := make([]Entry, len(s.Entries))
	copy(es, s.Entries)

	less := func(i, j int) bool { return byText(es[i], es[j]) }
	switch key {
	case SortBySpeed:
		less = func(i, j int) bool {
			if es[i].AvgMs != es[j].AvgMs {
				return es[i].AvgMs > es[j].AvgMs
			}
			return byText(es[i], es[j])
		}
	case SortByTargetPct:
		less = func(i, j int) bool {
			if es[i].TargetPct != es[j].TargetPct {
				return es[i].TargetPct < es[j].TargetPct
			}
			return byText(es[i], es[j])
		}
	case SortBySamples:
		less = func(i, j int) bool {
			if es[i].Samples != es[j].Samples {
				return es[i].Samples > es[j].Samples
			}
			return byText(es[i], es[j])
		}
	case SortByRecency:
		less = func(i, j int) bool {
			if !es[i].LastMeasured.Equal(es[j].LastMeasured) {
				return es[i].LastMeasured.After(es[j].LastMeasured)
			}
			return byText(es[i], es[j])
		}
	}
	sort.SliceStable(es, less)

	out := s
	out.Entries = es
	return out
}

func byText(a, b Entry) bool {
	if a.Size != b.Size {
		return a.Size < b.Size
	}
	return a.Text < b.Text
}

// Export projects the snapshot to flat rows ready for serialization
func (s Snapshot) Export() []ExportRow {
	out := make([]ExportRow, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, ExportRow{
			Size:      e.Size,
			Text:      e.Text,
			AvgMs:     e.AvgMs,
			WPM:       e.WPM,
			TargetPct: e.TargetPct,
			Band:      string(e.Band),
			Color:     e.Color,
			Samples:   e.Samples,
		})
	}
	return out
}
