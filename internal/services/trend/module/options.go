package module

import (
	"keydrill/internal/platform/config"
	"keydrill/internal/services/trend/domain"
)

// Options holds configuration settings for the trend module
type Options struct {
	DefaultSessions int
	DefaultTargetMs float64
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	tf := cfg.Prefix("CORE_TREND_")
	return Options{
		DefaultSessions: tf.MayInt("SESSIONS", domain.DefaultTrendSessions),
		DefaultTargetMs: tf.MayFloat64("DEFAULT_TARGET_MS", 200),
	}
}
