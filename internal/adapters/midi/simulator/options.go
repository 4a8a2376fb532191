package simulator

import (
	"math/rand"
	"time"

	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
)

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithInterval sets the delay between replayed messages.
func WithInterval(interval time.Duration) Option {
	return func(s *Source) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithMistakeRate sets the probability in [0,1] of injecting a playing
// error before each note.
func WithMistakeRate(rate float64) Option {
	return func(s *Source) {
		if rate >= 0 && rate <= 1 {
			s.mistakeRate = rate
		}
	}
}

// WithSeed reseeds the mistake stream for reproducible playback.
func WithSeed(seed int64) Option {
	return func(s *Source) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible playback
	}
}

// WithLogger sets a custom logger for the source.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}
