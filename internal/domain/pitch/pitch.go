// Package pitch maps between letter-name note spellings and MIDI pitch
// numbers.
package pitch

// Pitch is a MIDI note number in [0,127]. Middle C is 60.
type Pitch uint8

// Step is a natural letter step within an octave.
type Step int

// Natural letter steps in ascending pitch order.
const (
	C Step = iota
	D
	E
	F
	G
	A
	B
)

// stepOffsets holds the semitone offset of each natural step from C.
var stepOffsets = [...]int{0, 2, 4, 5, 7, 9, 11}

var stepNames = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// Steps returns all natural steps in ascending order.
func Steps() []Step {
	return []Step{C, D, E, F, G, A, B}
}

// Offset returns the semitone offset of the step from C.
func (s Step) Offset() int {
	return stepOffsets[s]
}

// String returns the letter name of the step.
func (s Step) String() string {
	if s < C || s > B {
		return "?"
	}
	return stepNames[s]
}

// Natural is a letter-name spelling of a natural pitch.
type Natural struct {
	Step   Step
	Octave int
}

// Pitch returns the MIDI pitch of the natural.
func (n Natural) Pitch() Pitch {
	return New(n.Step, n.Octave)
}

// New derives the MIDI pitch from a natural step and octave.
// Octave 4 starts at middle C, per standard MIDI numbering.
func New(step Step, octave int) Pitch {
	return Pitch((octave+1)*12 + step.Offset())
}

// Octave range scanned by Naturals. MIDI covers C-1..G9 but pitches above
// octave 8 stay out of any usable staff range.
const (
	minOctave = 0
	maxOctave = 8
)

// Naturals enumerates, in ascending pitch order, every natural-step pitch in
// octaves 0..8 whose pitch lies in [minPitch, maxPitch]. An empty result is
// valid; callers decide whether that is a configuration error.
func Naturals(minPitch, maxPitch Pitch) []Natural {
	var out []Natural
	for octave := minOctave; octave <= maxOctave; octave++ {
		for _, step := range Steps() {
			p := New(step, octave)
			if p >= minPitch && p <= maxPitch {
				out = append(out, Natural{Step: step, Octave: octave})
			}
		}
	}
	return out
}
