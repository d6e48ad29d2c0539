package module

import (
	"strconv"
	"strings"

	"keydrill/internal/core/ngram"
	"keydrill/internal/platform/config"
)

// Options holds configuration settings for the analysis module
type Options struct {
	DecayAlpha float64
	Sizes      []int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	nf := cfg.Prefix("CORE_NGRAM_")
	return Options{
		DecayAlpha: nf.MayFloat64("DECAY_ALPHA", ngram.DefaultDecayAlpha),
		Sizes:      parseSizes(nf.MayString("SIZES", "")),
	}
}

// parseSizes turns "2,3,4" into window widths; anything unparseable or out
// of range falls back to the defaults
func parseSizes(s string) []int {
	if s == "" {
		return ngram.DefaultSizes
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < ngram.MinSize || n > ngram.MaxSize {
			return ngram.DefaultSizes
		}
		out = append(out, n)
	}
	return out
}
