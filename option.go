package lodestar

import "github.com/rs/zerolog"

// Option augments how a Manager is constructed.
type Option func(*Manager)

// WithLogger replaces the config-derived logger. Mostly used by tests to
// silence output or capture it.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
		m.hasLogger = true
	}
}

// WithConfig skips environment loading and uses cfg directly.
func WithConfig(cfg EngineConfig) Option {
	return func(m *Manager) {
		m.cfg = &cfg
	}
}
