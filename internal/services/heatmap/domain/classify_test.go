package domain

import (
	"math"
	"testing"
	"time"
)

func snapFor(rows []AggregateRow, targetMs float64) Snapshot {
	return Snapshot{
		TargetMs:   targetMs,
		Thresholds: DefaultThresholds,
		Entries:    Classify(rows, targetMs, DefaultThresholds),
	}
}

func TestClassify_Bands(t *testing.T) {
	t.Parallel()

	// target 200ms: 150ms is faster than target (green), 250ms is 80% of
	// target (amber), 400ms is 50% (red)
	rows := []AggregateRow{
		{Size: 2, Text: "th", AvgMs: 150, Samples: 20},
		{Size: 2, Text: "he", AvgMs: 250, Samples: 20},
		{Size: 2, Text: "en", AvgMs: 400, Samples: 20},
	}
	es := Classify(rows, 200, DefaultThresholds)

	want := map[string]Band{"th": BandGreen, "he": BandAmber, "en": BandRed}
	for _, e := range es {
		if e.Band != want[e.Text] {
			t.Fatalf("%s banded %s, want %s (pct %v)", e.Text, e.Band, want[e.Text], e.TargetPct)
		}
		if e.Color != e.Band.Color() {
			t.Fatalf("%s color %q does not match band %s", e.Text, e.Color, e.Band)
		}
	}
}

func TestClassify_ExactlyOnTargetIsGreen(t *testing.T) {
	t.Parallel()
	es := Classify([]AggregateRow{{Size: 2, Text: "th", AvgMs: 200}}, 200, DefaultThresholds)
	if es[0].Band != BandGreen {
		t.Fatalf("on-target must be green, got %s (pct %v)", es[0].Band, es[0].TargetPct)
	}
	if math.Abs(es[0].TargetPct-100) > 1e-9 {
		t.Fatalf("on-target pct = %v, want 100", es[0].TargetPct)
	}
}

func TestClassify_DerivesWPM(t *testing.T) {
	t.Parallel()
	es := Classify([]AggregateRow{{Size: 2, Text: "th", AvgMs: 100}}, 200, DefaultThresholds)
	if math.Abs(es[0].WPM-120) > 1e-9 {
		t.Fatalf("100 ms/char must derive to 120 wpm, got %v", es[0].WPM)
	}
}

func TestClassify_NoTargetMeansRed(t *testing.T) {
	t.Parallel()
	es := Classify([]AggregateRow{{Size: 2, Text: "th", AvgMs: 100}}, 0, DefaultThresholds)
	if es[0].Band != BandRed || es[0].TargetPct != 0 {
		t.Fatalf("no target gives no pace comparison: %+v", es[0])
	}
}

func TestFilter_Narrows(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "th", AvgMs: 150, Samples: 20},
		{Size: 3, Text: "the", AvgMs: 150, Samples: 20},
		{Size: 2, Text: "he", AvgMs: 400, Samples: 5},
	}, 200)

	if got := s.Filter(FilterOpts{Size: 2}).Entries; len(got) != 2 {
		t.Fatalf("size filter kept %d, want 2", len(got))
	}
	if got := s.Filter(FilterOpts{Band: BandRed}).Entries; len(got) != 1 || got[0].Text != "he" {
		t.Fatalf("band filter wrong: %+v", got)
	}
	if got := s.Filter(FilterOpts{MinSamples: 10}).Entries; len(got) != 2 {
		t.Fatalf("sample filter kept %d, want 2", len(got))
	}
	if got := s.Filter(FilterOpts{TextContains: "h"}).Entries; len(got) != 3 {
		t.Fatalf("text filter kept %d, want 3", len(got))
	}

	// the receiver is untouched
	if len(s.Entries) != 3 {
		t.Fatalf("Filter must not mutate the source snapshot")
	}
}

func TestFilter_SpeedRange(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "th", AvgMs: 100, Samples: 20},
		{Size: 2, Text: "he", AvgMs: 250, Samples: 20},
		{Size: 2, Text: "en", AvgMs: 400, Samples: 20},
	}, 200)

	if got := s.Filter(FilterOpts{MinAvgMs: 200}).Entries; len(got) != 2 || got[0].Text != "he" {
		t.Fatalf("lower bound wrong: %+v", texts(got))
	}
	if got := s.Filter(FilterOpts{MaxAvgMs: 250}).Entries; len(got) != 2 || got[1].Text != "he" {
		t.Fatalf("upper bound wrong: %+v", texts(got))
	}
	if got := s.Filter(FilterOpts{MinAvgMs: 200, MaxAvgMs: 300}).Entries; len(got) != 1 || got[0].Text != "he" {
		t.Fatalf("range wrong: %+v", texts(got))
	}
}

func TestSort_Orders(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "aa", AvgMs: 100, Samples: 5, LastMeasured: now},
		{Size: 2, Text: "bb", AvgMs: 300, Samples: 50, LastMeasured: now.Add(-time.Hour)},
		{Size: 2, Text: "cc", AvgMs: 200, Samples: 10, LastMeasured: now.Add(time.Hour)},
	}, 200)

	if got := s.Sort(SortBySpeed).Entries; got[0].Text != "bb" || got[2].Text != "aa" {
		t.Fatalf("speed sort wrong: %+v", texts(got))
	}
	if got := s.Sort(SortByTargetPct).Entries; got[0].Text != "bb" {
		t.Fatalf("target sort wrong: %+v", texts(got))
	}
	if got := s.Sort(SortBySamples).Entries; got[0].Text != "bb" || got[2].Text != "aa" {
		t.Fatalf("samples sort wrong: %+v", texts(got))
	}
	if got := s.Sort(SortByRecency).Entries; got[0].Text != "cc" || got[2].Text != "bb" {
		t.Fatalf("recency sort wrong: %+v", texts(got))
	}
	if got := s.Sort(SortByText).Entries; got[0].Text != "aa" || got[2].Text != "cc" {
		t.Fatalf("text sort wrong: %+v", texts(got))
	}
}

func texts(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Text
	}
	return out
}

func TestExport_FlatRows(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{{Size: 2, Text: "th", AvgMs: 150, Samples: 20}}, 200)
	rows := s.Export()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Text != "th" || r.Band != string(BandGreen) || r.Color != BandGreen.Color() {
		t.Fatalf("export row wrong: %+v", r)
	}
	if r.WPM <= 0 || r.TargetPct <= 100 {
		t.Fatalf("derived fields missing: %+v", r)
	}
}
