package app

import "github.com/ahmetildirim/sightreading.studio/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the raw message queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDurations sets the allowed note durations for generated exercises.
func WithDurations(durations []int) Option {
	return func(s *Service) {
		s.durations = durations
	}
}

// WithVerdictHandler sets the callback receiving judged events. The
// handler runs on the dispatcher goroutine and must not block.
func WithVerdictHandler(fn func(VerdictEvent)) Option {
	return func(s *Service) {
		s.onVerdict = fn
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
