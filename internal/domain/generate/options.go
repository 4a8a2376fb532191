package generate

import "github.com/ahmetildirim/sightreading.studio/pkg/logger"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithDurations sets the allowed note durations in subdivisions. Values
// outside {2,4,8} still serialize, rendered as quarters. The slice order
// defines the candidate evaluation order of the rhythm draw.
func WithDurations(durations []int) Option {
	return func(g *Generator) {
		if len(durations) == 0 {
			return
		}
		g.durations = make([]int, len(durations))
		copy(g.durations, durations)
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
