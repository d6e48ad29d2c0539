package domain

import (
	"reflect"
	"testing"
)

func TestWeakPoints_RanksSlowestFirst(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "th", AvgMs: 150, Samples: 30}, // green, not weak
		{Size: 2, Text: "he", AvgMs: 400, Samples: 30}, // 50% of target
		{Size: 2, Text: "en", AvgMs: 250, Samples: 30}, // 80% of target
	}, 200)

	got := WeakPoints(s, WeakPointOpts{})
	if want := []string{"he", "en"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("WeakPoints = %v, want %v", got, want)
	}
}

func TestWeakPoints_ConfidenceFloor(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "he", AvgMs: 900, Samples: 3},  // very slow but thin evidence
		{Size: 2, Text: "en", AvgMs: 250, Samples: 30}, // moderately slow, well measured
	}, 200)

	got := WeakPoints(s, WeakPointOpts{MinSamples: 10})
	if want := []string{"en"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("WeakPoints = %v, want %v", got, want)
	}
}

func TestWeakPoints_SampleCountBreaksTies(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "ab", AvgMs: 400, Samples: 15},
		{Size: 2, Text: "cd", AvgMs: 400, Samples: 40},
	}, 200)

	got := WeakPoints(s, WeakPointOpts{})
	if want := []string{"cd", "ab"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("more evidence of equal slowness ranks first: got %v, want %v", got, want)
	}
}

func TestWeakPoints_SizeAndLimit(t *testing.T) {
	t.Parallel()
	s := snapFor([]AggregateRow{
		{Size: 2, Text: "he", AvgMs: 500, Samples: 30},
		{Size: 3, Text: "the", AvgMs: 600, Samples: 30},
		{Size: 2, Text: "en", AvgMs: 400, Samples: 30},
	}, 200)

	if got := WeakPoints(s, WeakPointOpts{Size: 2}); !reflect.DeepEqual(got, []string{"he", "en"}) {
		t.Fatalf("size restriction wrong: %v", got)
	}
	if got := WeakPoints(s, WeakPointOpts{Limit: 1}); !reflect.DeepEqual(got, []string{"the"}) {
		t.Fatalf("limit wrong: %v", got)
	}
}

func TestWeakPoints_EmptySnapshot(t *testing.T) {
	t.Parallel()
	if got := WeakPoints(Snapshot{Thresholds: DefaultThresholds}, WeakPointOpts{}); len(got) != 0 {
		t.Fatalf("empty snapshot must yield no weak points, got %v", got)
	}
}
