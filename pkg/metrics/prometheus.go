// Package metrics provides Prometheus metrics for the practice engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the engine.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	// Generator metrics
	exercisesGenerated prometheus.Counter
	generateErrors     prometheus.Counter
	notesGenerated     prometheus.Counter

	// Decoder metrics
	notesDecoded      *prometheus.CounterVec
	rawIgnored        prometheus.Counter
	duplicatesDropped prometheus.Counter
	heldNotes         prometheus.Gauge

	// Matcher metrics
	verdicts        *prometheus.CounterVec
	sessionAccuracy prometheus.Gauge
	activeSessions  prometheus.Gauge

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueDrops       prometheus.Counter
}

var globalManager *Manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "sightreading",
		subsystem: "engine",
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.exercisesGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exercises_generated_total",
		Help:      "Total number of exercises generated",
	})

	m.generateErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generate_errors_total",
		Help:      "Total number of failed generate calls (invalid configuration)",
	})

	m.notesGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notes_generated_total",
		Help:      "Total number of notes emitted by the generator",
	})

	m.notesDecoded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "notes_decoded_total",
			Help:      "Total number of logical note events emitted by the decoder",
		},
		[]string{"kind"},
	)

	m.rawIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "raw_messages_ignored_total",
		Help:      "Total number of raw messages dropped as malformed or unknown",
	})

	m.duplicatesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_note_ons_total",
		Help:      "Total number of retriggered note-ons suppressed while already held",
	})

	m.heldNotes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "held_notes",
		Help:      "Number of keys currently physically depressed",
	})

	m.verdicts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "verdicts_total",
			Help:      "Total number of matcher verdicts by kind",
		},
		[]string{"verdict"},
	)

	m.sessionAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_accuracy_percent",
		Help:      "Accuracy of the active session in percent",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of sessions currently attached to an input source",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the raw message queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the raw message queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue fill ratio between 0 and 1",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of raw messages enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of raw messages dequeued",
	})

	m.queueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_drops_total",
		Help:      "Total number of raw messages dropped (queue full or closed)",
	})
}

// Generator helpers.

// RecordExerciseGenerated increments the exercises generated counter.
func RecordExerciseGenerated() {
	globalManager.exercisesGenerated.Inc()
}

// RecordGenerateError increments the generate error counter.
func RecordGenerateError() {
	globalManager.generateErrors.Inc()
}

// RecordNotesGenerated adds n to the notes generated counter.
func RecordNotesGenerated(n int) {
	globalManager.notesGenerated.Add(float64(n))
}

// Decoder helpers.

// RecordNoteDecoded increments the decoded-events counter for a kind
// ("note_down", "note_up", "all_released").
func RecordNoteDecoded(kind string) {
	globalManager.notesDecoded.WithLabelValues(kind).Inc()
}

// RecordRawIgnored increments the ignored raw messages counter.
func RecordRawIgnored() {
	globalManager.rawIgnored.Inc()
}

// RecordDuplicateDropped increments the suppressed note-on counter.
func RecordDuplicateDropped() {
	globalManager.duplicatesDropped.Inc()
}

// UpdateHeldNotes sets the held-notes gauge.
func UpdateHeldNotes(count int) {
	globalManager.heldNotes.Set(float64(count))
}

// Matcher helpers.

// RecordVerdict increments the verdict counter for a verdict kind.
func RecordVerdict(verdict string) {
	globalManager.verdicts.WithLabelValues(verdict).Inc()
}

// UpdateSessionAccuracy sets the session accuracy gauge.
func UpdateSessionAccuracy(percent int) {
	globalManager.sessionAccuracy.Set(float64(percent))
}

// UpdateActiveSessions sets the active sessions gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// Queue helpers.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueDrop increments the dropped-message counter.
func RecordQueueDrop() {
	globalManager.queueDrops.Inc()
}

// GetRegistry returns the registry backing the global manager, for callers
// that embed these metrics into their own exposition surface.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}
