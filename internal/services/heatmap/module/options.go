package module

import (
	"keydrill/internal/platform/config"
	"keydrill/internal/services/heatmap/domain"
)

// Options holds configuration settings for the heatmap module
type Options struct {
	GreenPct        float64
	AmberPct        float64
	DefaultTargetMs float64
	WeakMinSamples  int64
	HardLimit       int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	hf := cfg.Prefix("CORE_HEATMAP_")
	return Options{
		GreenPct:        hf.MayFloat64("GREEN_PCT", domain.DefaultThresholds.GreenPct),
		AmberPct:        hf.MayFloat64("AMBER_PCT", domain.DefaultThresholds.AmberPct),
		DefaultTargetMs: hf.MayFloat64("DEFAULT_TARGET_MS", 200),
		WeakMinSamples:  int64(hf.MayInt("WEAK_MIN_SAMPLES", domain.DefaultWeakMinSamples)),
		HardLimit:       hf.MayInt("HARD_LIMIT", 100),
	}
}
