// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MinPitch and MaxPitch bound generation to an inclusive MIDI range.
	MinPitch int `koanf:"min_pitch"`
	MaxPitch int `koanf:"max_pitch"`

	// Clef is the display hint carried into the notation document:
	// "treble" or "bass".
	Clef string `koanf:"clef"`

	// NotesPerMeasure sets how many notes fill each generated measure.
	NotesPerMeasure int `koanf:"notes_per_measure"`

	// TotalNotes sets the length of a generated exercise.
	TotalNotes int `koanf:"total_notes"`

	// Durations lists the allowed note durations in subdivisions.
	Durations []int `koanf:"durations"`

	// QueueSize bounds the raw message queue between driver and
	// dispatcher.
	QueueSize int `koanf:"queue_size"`

	// PreferredDevices lists name patterns tried first when picking an
	// input source.
	PreferredDevices []string `koanf:"preferred_devices"`

	// ExcludedDevices lists name patterns of ports never offered as
	// input sources (virtual/system ports).
	ExcludedDevices []string `koanf:"excluded_devices"`
}

// New creates a Config with defaults: one octave up from middle C, treble
// clef, quarter notes, four-note measures.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		MinPitch:        60,
		MaxPitch:        72,
		Clef:            "treble",
		NotesPerMeasure: 4,
		TotalNotes:      16,
		Durations:       []int{4},
		QueueSize:       1024,
		ExcludedDevices: []string{"Midi Through", "Through Port", "Dummy"},
	}
}
