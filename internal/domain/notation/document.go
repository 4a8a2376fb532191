// Package notation models the serialized score handed to external renderers.
//
// A Document is structurally a list of measures, each an ordered list of
// (pitch, duration) notes. Only the first measure carries the global
// attributes block. Documents are produced once per generate call and never
// mutated afterwards.
package notation

import "github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"

// Fixed rhythmic resolution: 4 subdivisions per beat, 4 beats per measure.
const (
	DivisionsPerBeat   = 4
	BeatsPerMeasure    = 4
	SubdivisionsPerBar = DivisionsPerBeat * BeatsPerMeasure
)

// Clef is a display hint carried through to serialization only.
type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
)

// Sign returns the MusicXML clef sign for the clef.
func (c Clef) Sign() string {
	if c == ClefBass {
		return "F"
	}
	return "G"
}

// Line returns the MusicXML staff line for the clef.
func (c Clef) Line() int {
	if c == ClefBass {
		return 4
	}
	return 2
}

// Note is a single notated pitch with a duration in subdivisions.
type Note struct {
	Step     pitch.Step
	Octave   int
	Duration int
}

// Pitch returns the MIDI pitch of the note.
func (n Note) Pitch() pitch.Pitch {
	return pitch.New(n.Step, n.Octave)
}

// Type returns the notated note type for the duration: 2 subdivisions map to
// an eighth, 4 to a quarter, 8 to a half. Unmapped durations render as
// quarters so external renderers always receive a known type.
func (n Note) Type() string {
	switch n.Duration {
	case 2: //nolint:mnd // duration values are the wire vocabulary
		return "eighth"
	case 8: //nolint:mnd
		return "half"
	default:
		return "quarter"
	}
}

// Attributes is the global attributes block of the first measure.
type Attributes struct {
	Divisions    int
	KeyFifths    int
	TimeBeats    int
	TimeBeatType int
	Clef         Clef
}

// DefaultAttributes returns the fixed 4/4, C-major attributes block with the
// given clef.
func DefaultAttributes(clef Clef) Attributes {
	return Attributes{
		Divisions:    DivisionsPerBeat,
		KeyFifths:    0,
		TimeBeats:    BeatsPerMeasure,
		TimeBeatType: 4,
		Clef:         clef,
	}
}

// Measure is an ordered list of notes. Attributes is nil on every measure
// but the first.
type Measure struct {
	Attributes *Attributes
	Notes      []Note
}

// Document is an ordered list of measures.
type Document struct {
	Measures []Measure
}

// Empty reports whether the document has no measures.
func (d Document) Empty() bool {
	return len(d.Measures) == 0
}

// NoteCount returns the total number of notes across all measures.
func (d Document) NoteCount() int {
	n := 0
	for _, m := range d.Measures {
		n += len(m.Notes)
	}
	return n
}
