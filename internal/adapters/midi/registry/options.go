package registry

import (
	"time"

	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithPollInterval sets how often Watch rescans for hot-plug changes.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Registry) {
		if interval > 0 {
			r.poll = interval
		}
	}
}

// WithDebounceWindow sets the settle window for hot-plug notifications.
func WithDebounceWindow(window time.Duration) Option {
	return func(r *Registry) {
		if window > 0 {
			r.debounce = window
		}
	}
}

// WithExcludedPatterns replaces the name patterns of ports that never show
// up in enumeration (virtual/system ports).
func WithExcludedPatterns(patterns []string) Option {
	return func(r *Registry) {
		if len(patterns) > 0 {
			r.excluded = patterns
		}
	}
}

// WithPreferredPatterns sets the name patterns Pick tries first.
func WithPreferredPatterns(patterns []string) Option {
	return func(r *Registry) {
		r.prefer = patterns
	}
}

// WithLogger sets a custom logger for the registry.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
