// Package generate produces deterministic, seeded practice exercises: a
// serialized notation document plus the expected pitch sequence the matcher
// checks against.
package generate

import (
	"context"
	"fmt"

	"github.com/ahmetildirim/sightreading.studio/internal/domain/notation"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	"github.com/ahmetildirim/sightreading.studio/pkg/metrics"
)

// RangeSpec restricts generation to an inclusive pitch range. Clef is a
// display hint carried through to the document only.
type RangeSpec struct {
	Min  pitch.Pitch
	Max  pitch.Pitch
	Clef notation.Clef
}

// Params are the inputs of a single Generate call.
type Params struct {
	Range           RangeSpec
	NotesPerMeasure int
	TotalNotes      int
	Seed            uint32
}

// Result is the output of a Generate call. Expected lists one pitch per
// notated note in left-to-right, measure-by-measure order; it is the ground
// truth the session matcher consumes.
type Result struct {
	Document notation.Document
	Expected []pitch.Pitch
}

// Generator builds exercises from a shared deterministic random stream.
//
// Draw order is fixed so re-implementations agree bit-for-bit for the same
// seed: per measure, all rhythm durations are drawn first, then one pitch
// per duration. Candidate durations are evaluated in the order of the
// configured allowed set.
type Generator struct {
	durations []int
	logger    logger.Logger
}

// New creates a generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		durations: []int{notation.DivisionsPerBeat}, // quarter notes only
		logger:    logger.Get().Named("generate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a document and expected sequence for the given params.
// For fixed params the output is bit-identical across calls, platforms and
// process restarts.
func (g *Generator) Generate(ctx context.Context, p Params) (Result, error) {
	if p.NotesPerMeasure <= 0 {
		metrics.RecordGenerateError()
		return Result{}, fmt.Errorf("%w: notes per measure must be positive, got %d", ErrInvalidConfig, p.NotesPerMeasure)
	}
	if minDur := g.minDuration(); p.NotesPerMeasure*minDur > notation.SubdivisionsPerBar {
		metrics.RecordGenerateError()
		return Result{}, fmt.Errorf("%w: %d notes at minimum duration %d overfill a %d-subdivision measure",
			ErrInvalidConfig, p.NotesPerMeasure, minDur, notation.SubdivisionsPerBar)
	}
	if p.Range.Min > p.Range.Max {
		metrics.RecordGenerateError()
		return Result{}, fmt.Errorf("%w: min pitch %d above max pitch %d", ErrInvalidConfig, p.Range.Min, p.Range.Max)
	}

	pool := pitch.Naturals(p.Range.Min, p.Range.Max)
	if len(pool) == 0 {
		metrics.RecordGenerateError()
		return Result{}, fmt.Errorf("%w: [%d,%d]", ErrEmptyRange, p.Range.Min, p.Range.Max)
	}

	if p.TotalNotes <= 0 {
		// Valid request for nothing: empty document, empty sequence.
		return Result{}, nil
	}

	rng := newSplitMix32(p.Seed)

	var doc notation.Document
	expected := make([]pitch.Pitch, 0, p.TotalNotes)

	for remaining := p.TotalNotes; remaining > 0; remaining -= p.NotesPerMeasure {
		count := min(remaining, p.NotesPerMeasure)

		durations := g.measureRhythm(rng, count)

		measure := notation.Measure{Notes: make([]notation.Note, 0, count)}
		if doc.Empty() {
			attrs := notation.DefaultAttributes(p.Range.Clef)
			measure.Attributes = &attrs
		}
		for _, d := range durations {
			n := pool[rng.intn(len(pool))]
			measure.Notes = append(measure.Notes, notation.Note{
				Step:     n.Step,
				Octave:   n.Octave,
				Duration: d,
			})
			expected = append(expected, n.Pitch())
		}
		doc.Measures = append(doc.Measures, measure)
	}

	g.logger.Debug(ctx, "exercise generated",
		logger.Int("measures", len(doc.Measures)),
		logger.Int("notes", len(expected)),
		logger.Any("seed", p.Seed),
	)
	metrics.RecordExerciseGenerated()
	metrics.RecordNotesGenerated(len(expected))

	return Result{Document: doc, Expected: expected}, nil
}

// measureRhythm draws count durations summing exactly to a full measure.
// At each slot only durations that leave the remaining slots fillable at the
// minimum duration are offered; when no candidate fits, the minimum is
// forced. Leftover budget lands on the last note so a measure is never
// under-filled.
func (g *Generator) measureRhythm(rng *splitMix32, count int) []int {
	minDur := g.minDuration()

	durations := make([]int, 0, count)
	budget := notation.SubdivisionsPerBar
	for slot := 0; slot < count; slot++ {
		slotsLeft := count - slot - 1
		var candidates []int
		for _, d := range g.durations {
			if d <= budget-minDur*slotsLeft {
				candidates = append(candidates, d)
			}
		}
		d := minDur
		if len(candidates) > 0 {
			d = candidates[rng.intn(len(candidates))]
		}
		durations = append(durations, d)
		budget -= d
	}
	if budget > 0 {
		durations[count-1] += budget
	}
	return durations
}

// minDuration returns the smallest allowed duration; it bounds how many
// notes a measure can hold.
func (g *Generator) minDuration() int {
	minDur := g.durations[0]
	for _, d := range g.durations[1:] {
		if d < minDur {
			minDur = d
		}
	}
	return minDur
}
