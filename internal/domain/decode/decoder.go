// Package decode normalizes a raw hardware message stream into clean
// logical note events.
//
// Physical keyboards are noisy: they retrigger note-ons for held keys,
// deliver stray releases, and encode "key released" as either a note-off or
// a zero-velocity note-on. The decoder absorbs all of that so the matcher
// downstream only ever sees deduplicated NoteDown/NoteUp/AllReleased
// events.
package decode

import (
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/pkg/metrics"
)

// Status byte top nibbles for the two message kinds the decoder understands.
const (
	statusNoteOn  = 0x90
	statusNoteOff = 0x80
	statusMask    = 0xF0
)

// Message is a raw 3-byte hardware message as delivered by a driver
// callback.
type Message struct {
	Status   byte
	Pitch    byte
	Velocity byte
}

// EventKind discriminates logical events.
type EventKind int

const (
	// NoteDown is a fresh key press.
	NoteDown EventKind = iota
	// NoteUp is a key release of a held key.
	NoteUp
	// AllReleased marks the transition to no keys held at all.
	AllReleased
)

func (k EventKind) String() string {
	switch k {
	case NoteDown:
		return "note_down"
	case NoteUp:
		return "note_up"
	default:
		return "all_released"
	}
}

// Event is a decoded, deduplicated logical note event.
type Event struct {
	Kind     EventKind
	Pitch    pitch.Pitch
	Velocity byte
}

// Decoder tracks the set of physically depressed keys and turns raw
// messages into logical events. It owns its held-note set exclusively and
// must be driven from a single event queue; it does no locking of its own.
type Decoder struct {
	held map[pitch.Pitch]struct{}
}

// NewDecoder creates a decoder with an empty held-note set.
func NewDecoder() *Decoder {
	return &Decoder{held: make(map[pitch.Pitch]struct{})}
}

// Decode consumes one raw message and returns the logical events it
// produces: none for noise, one for a press, and up to two for a release
// (NoteUp, then AllReleased when the last key comes up).
func (d *Decoder) Decode(msg Message) []Event {
	p := pitch.Pitch(msg.Pitch)

	switch msg.Status & statusMask {
	case statusNoteOn:
		if msg.Velocity == 0 {
			// Zero-velocity note-on is the second canonical release
			// encoding.
			return d.release(p)
		}
		return d.press(p, msg.Velocity)
	case statusNoteOff:
		return d.release(p)
	default:
		metrics.RecordRawIgnored()
		return nil
	}
}

// DecodeBytes decodes a raw byte slice. Messages shorter than three bytes
// are ignored.
func (d *Decoder) DecodeBytes(raw []byte) []Event {
	if len(raw) < 3 {
		metrics.RecordRawIgnored()
		return nil
	}
	return d.Decode(Message{Status: raw[0], Pitch: raw[1], Velocity: raw[2]})
}

func (d *Decoder) press(p pitch.Pitch, velocity byte) []Event {
	if _, ok := d.held[p]; ok {
		// Retrigger while held: must not double-count.
		metrics.RecordDuplicateDropped()
		return nil
	}
	d.held[p] = struct{}{}
	metrics.UpdateHeldNotes(len(d.held))
	metrics.RecordNoteDecoded(NoteDown.String())
	return []Event{{Kind: NoteDown, Pitch: p, Velocity: velocity}}
}

func (d *Decoder) release(p pitch.Pitch) []Event {
	if _, ok := d.held[p]; !ok {
		// Stray release: expected and harmless.
		return nil
	}
	delete(d.held, p)
	metrics.UpdateHeldNotes(len(d.held))
	metrics.RecordNoteDecoded(NoteUp.String())
	events := []Event{{Kind: NoteUp, Pitch: p}}
	if len(d.held) == 0 {
		metrics.RecordNoteDecoded(AllReleased.String())
		events = append(events, Event{Kind: AllReleased})
	}
	return events
}

// Held returns the number of keys currently depressed.
func (d *Decoder) Held() int {
	return len(d.held)
}

// IsHeld reports whether a pitch is currently depressed.
func (d *Decoder) IsHeld(p pitch.Pitch) bool {
	_, ok := d.held[p]
	return ok
}

// Reset clears the held-note set without synthesizing release events.
// Listener teardown calls this; the presentation layer treats detach as an
// implicit all-released.
func (d *Decoder) Reset() {
	clear(d.held)
	metrics.UpdateHeldNotes(0)
}
