// Package simulator provides a scripted raw-message source that stands in
// for a physical keyboard. It drives the full decode/match path in demos
// and tests without any hardware attached.
package simulator

import (
	"context"
	"math/rand"
	"time"

	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
)

// Default simulator configuration constants.
const (
	defaultInterval   = 50 * time.Millisecond
	defaultVelocity   = 96
	defaultRandomSeed = 42
)

// Mistake kinds injected into a scripted performance.
const (
	mistakeWrongPair = iota
	mistakeRetrigger
	mistakeStrayRelease
	mistakeKinds
)

// Source replays a scripted raw message stream to a subscriber on a fixed
// interval.
type Source struct {
	script      []decode.Message
	interval    time.Duration
	mistakeRate float64
	rng         *rand.Rand
	logger      logger.Logger
}

// New creates a simulator with configuration options. A Source without a
// script replays nothing.
func New(opts ...Option) *Source {
	s := &Source{
		interval: defaultInterval,
		rng:      rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible playback
		logger:   logger.Get().Named("simulator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadExpected builds the script for a performance of the expected
// sequence: one press/release pair per pitch, in order, with mistakes
// injected at the configured rate. The script is deterministic for a fixed
// seed.
func (s *Source) LoadExpected(expected []pitch.Pitch) {
	script := make([]decode.Message, 0, 2*len(expected))
	for _, p := range expected {
		if s.mistakeRate > 0 && s.rng.Float64() < s.mistakeRate {
			script = append(script, s.mistake(p)...)
		}
		script = append(script,
			decode.Message{Status: 0x90, Pitch: byte(p), Velocity: defaultVelocity},
			decode.Message{Status: 0x80, Pitch: byte(p)},
		)
	}
	s.script = script
}

// ScriptLen returns the number of raw messages in the loaded script.
func (s *Source) ScriptLen() int {
	return len(s.script)
}

// mistake returns the raw messages of one injected playing error.
func (s *Source) mistake(correct pitch.Pitch) []decode.Message {
	wrong := byte(correct) + 1
	switch s.rng.Intn(mistakeKinds) {
	case mistakeWrongPair:
		return []decode.Message{
			{Status: 0x90, Pitch: wrong, Velocity: defaultVelocity},
			{Status: 0x80, Pitch: wrong},
		}
	case mistakeRetrigger:
		// Press a wrong key, retrigger it, then release: the decoder must
		// collapse this to one logical press and the matcher must not
		// double-count the attempt.
		return []decode.Message{
			{Status: 0x90, Pitch: wrong, Velocity: defaultVelocity},
			{Status: 0x90, Pitch: wrong, Velocity: defaultVelocity},
			{Status: 0x80, Pitch: wrong},
		}
	default:
		// Stray release of a key that was never pressed.
		return []decode.Message{{Status: 0x80, Pitch: wrong}}
	}
}

// Subscribe starts replaying the script to fn from a background goroutine.
// The returned stop function halts playback.
func (s *Source) Subscribe(ctx context.Context, fn func(decode.Message)) (func(), error) {
	playCtx, cancel := context.WithCancel(ctx)
	script := s.script

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for _, msg := range script {
			select {
			case <-playCtx.Done():
				return
			case <-ticker.C:
				fn(msg)
			}
		}
		s.logger.Debug(playCtx, "script exhausted", logger.Int("messages", len(script)))
	}()

	return cancel, nil
}
