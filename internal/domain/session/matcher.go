// Package session contains the real-time matching state machine that judges
// decoded note events against an expected pitch sequence.
package session

import (
	"math"

	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/pkg/metrics"
)

// State identifies the matcher's position in its lifecycle.
type State int

const (
	// StateIdle means no expected sequence is loaded.
	StateIdle State = iota
	// StateAwaiting means the matcher waits for the next correct press.
	StateAwaiting
	// StateArmed means the correct note is held and must be released
	// before the cursor can advance.
	StateArmed
	// StateComplete means the cursor has reached the end of the sequence.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateAwaiting:
		return "awaiting"
	case StateArmed:
		return "armed"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Verdict is the per-event judgement returned to the presentation layer.
type Verdict string

const (
	VerdictCorrect  Verdict = "correct"
	VerdictWrong    Verdict = "wrong"
	VerdictComplete Verdict = "complete"
	VerdictAdvanced Verdict = "advanced"
	VerdictIdle     Verdict = "idle"
)

// Matcher judges note-down/note-off events against an expected sequence.
//
// Only one pitch may be armed at a time: the player must release the
// correct key before the next expected note can be attempted, so
// chord-mashing cannot skip ahead. A Matcher backs exactly one active
// session and must be driven from a single event queue; it does no locking
// of its own.
type Matcher struct {
	expected []pitch.Pitch
	cursor   int
	armed    *pitch.Pitch

	attempts        int
	correctAttempts int

	state State
}

// NewMatcher creates a matcher in the idle state. Call Reset to load an
// expected sequence.
func NewMatcher() *Matcher {
	return &Matcher{state: StateIdle}
}

// Reset loads a new expected sequence, discarding all previous session
// state. Valid from any state. An empty sequence completes immediately.
func (m *Matcher) Reset(expected []pitch.Pitch) {
	m.expected = make([]pitch.Pitch, len(expected))
	copy(m.expected, expected)
	m.cursor = 0
	m.armed = nil
	m.attempts = 0
	m.correctAttempts = 0
	if len(m.expected) == 0 {
		m.state = StateComplete
	} else {
		m.state = StateAwaiting
	}
	metrics.UpdateSessionAccuracy(m.Accuracy())
}

// HandleNoteDown judges a key press.
func (m *Matcher) HandleNoteDown(p pitch.Pitch) Verdict {
	switch m.state {
	case StateComplete:
		return m.verdict(VerdictComplete)
	case StateArmed:
		if *m.armed == p {
			// Re-press of the armed note while held: benign, not a new
			// attempt.
			return m.verdict(VerdictCorrect)
		}
		// Extra simultaneous wrong note; the armed note stays armed.
		m.attempts++
		return m.verdict(VerdictWrong)
	case StateAwaiting:
		m.attempts++
		if p == m.expected[m.cursor] {
			m.armed = &p
			m.state = StateArmed
			m.correctAttempts++
			return m.verdict(VerdictCorrect)
		}
		return m.verdict(VerdictWrong)
	default: // StateIdle
		return m.verdict(VerdictIdle)
	}
}

// HandleNoteOff judges a key release. Only the release of the armed pitch
// advances the cursor; everything else is an irrelevant release.
func (m *Matcher) HandleNoteOff(p pitch.Pitch) Verdict {
	if m.state != StateArmed || *m.armed != p {
		return m.verdict(VerdictIdle)
	}
	m.armed = nil
	m.cursor++
	if m.cursor == len(m.expected) {
		m.state = StateComplete
		return m.verdict(VerdictComplete)
	}
	m.state = StateAwaiting
	return m.verdict(VerdictAdvanced)
}

// State returns the current lifecycle state.
func (m *Matcher) State() State {
	return m.state
}

// Cursor returns the index of the next expected note.
func (m *Matcher) Cursor() int {
	return m.cursor
}

// Attempts returns the number of counted key presses.
func (m *Matcher) Attempts() int {
	return m.attempts
}

// CorrectAttempts returns the number of presses that matched the expected
// note.
func (m *Matcher) CorrectAttempts() int {
	return m.correctAttempts
}

// Accuracy derives the session accuracy in percent from the counters.
// A session without attempts reports 100.
func (m *Matcher) Accuracy() int {
	if m.attempts == 0 {
		return 100
	}
	return int(math.Round(100 * float64(m.correctAttempts) / float64(m.attempts)))
}

func (m *Matcher) verdict(v Verdict) Verdict {
	metrics.RecordVerdict(string(v))
	metrics.UpdateSessionAccuracy(m.Accuracy())
	return v
}
