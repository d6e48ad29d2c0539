package domain

import "sort"

// DefaultWeakMinSamples is the confidence floor below which an n-gram is
// too thinly measured to call weak
const DefaultWeakMinSamples = 10

// WeakPoints picks the n-gram texts most in need of practice: the ones
// furthest below target pace, with sample count breaking ties (more
// evidence of slowness ranks higher). Entries under the confidence floor
// never qualify
func WeakPoints(s Snapshot, opts WeakPointOpts) []string {
	if opts.MinSamples <= 0 {
		opts.MinSamples = DefaultWeakMinSamples
	}

	cands := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Samples < opts.MinSamples {
			continue
		}
		if opts.Size > 0 && e.Size != opts.Size {
			continue
		}
		if e.TargetPct >= s.Thresholds.GreenPct {
			continue // already at pace
		}
		cands = append(cands, e)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].TargetPct != cands[j].TargetPct {
			return cands[i].TargetPct < cands[j].TargetPct
		}
		if cands[i].Samples != cands[j].Samples {
			return cands[i].Samples > cands[j].Samples
		}
		return byText(cands[i], cands[j])
	})

	if opts.Limit > 0 && len(cands) > opts.Limit {
		cands = cands[:opts.Limit]
	}
	out := make([]string, 0, len(cands))
	for _, e := range cands {
		out = append(out, e.Text)
	}
	return out
}
