// Package app wires the generator, queue, decoder and matcher into one
// practice service and owns the session lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/mq/queue"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/generate"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/notation"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/session"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	"github.com/ahmetildirim/sightreading.studio/pkg/metrics"
)

// Source is the capability boundary to a raw message stream: a hardware
// device subscription or a simulator. Subscribe delivers messages to fn
// until the returned stop function is called.
type Source interface {
	Subscribe(ctx context.Context, fn func(decode.Message)) (func(), error)
}

// Exercise is one generated practice unit handed to the presentation
// layer.
type Exercise struct {
	SessionID string
	Document  notation.Document
	Expected  []pitch.Pitch
}

// VerdictEvent reports one judged logical event to the verdict handler.
type VerdictEvent struct {
	SessionID string
	Event     decode.Event
	Verdict   session.Verdict
	Cursor    int
	State     session.State
	Accuracy  int
}

// Stats is a point-in-time snapshot of the active session.
type Stats struct {
	SessionID       string
	State           session.State
	Cursor          int
	Total           int
	Attempts        int
	CorrectAttempts int
	Accuracy        int
	HeldNotes       int
}

// Service implements the practice loop: it generates exercises, drains the
// raw message queue on a single dispatcher goroutine, and publishes
// verdicts.
type Service struct {
	mu sync.RWMutex

	generator *generate.Generator
	queue     queue.Queue
	decoder   *decode.Decoder
	matcher   *session.Matcher

	queueSize int
	durations []int
	onVerdict func(VerdictEvent)
	logger    logger.Logger

	sessionID  string
	total      int
	started    bool
	stopSource func()
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a service with configuration options.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize: 1024,
		decoder:   decode.NewDecoder(),
		matcher:   session.NewMatcher(),
		logger:    logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}

	genOpts := []generate.Option{generate.WithLogger(s.logger.Named("generate"))}
	if len(s.durations) > 0 {
		genOpts = append(genOpts, generate.WithDurations(s.durations))
	}
	s.generator = generate.New(genOpts...)

	return s
}

// Start launches the dispatcher goroutine. It must be called before any
// source is attached.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("service already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.dispatch(runCtx)

	s.logger.Info(ctx, "service started", logger.Int("queue_size", s.queueSize))
	return nil
}

// Stop detaches any source, closes the queue and waits for the dispatcher
// to drain.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stopSource := s.stopSource
	s.stopSource = nil
	q := s.queue
	done := s.done
	s.mu.Unlock()

	if stopSource != nil {
		stopSource()
	}
	_ = q.Close()
	<-done
	s.cancel()

	s.mu.Lock()
	s.decoder.Reset()
	s.mu.Unlock()
	metrics.UpdateActiveSessions(0)
}

// NewExercise generates an exercise and resets the session state to it.
// The previous session, if any, is discarded.
func (s *Service) NewExercise(ctx context.Context, params generate.Params) (Exercise, error) {
	result, err := s.generator.Generate(ctx, params)
	if err != nil {
		return Exercise{}, fmt.Errorf("generate exercise: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = uuid.NewString()
	s.total = len(result.Expected)
	s.matcher.Reset(result.Expected)
	s.decoder.Reset()

	s.logger.Info(ctx, "exercise loaded",
		logger.String("session", s.sessionID),
		logger.Int("notes", s.total),
	)

	return Exercise{
		SessionID: s.sessionID,
		Document:  result.Document,
		Expected:  result.Expected,
	}, nil
}

// Attach subscribes the service to a raw message source. Only one source
// may be attached at a time.
func (s *Service) Attach(ctx context.Context, src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("service not started")
	}
	if s.stopSource != nil {
		return fmt.Errorf("source already attached")
	}

	stop, err := src.Subscribe(ctx, func(msg decode.Message) {
		s.queue.Enqueue(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe source: %w", err)
	}
	s.stopSource = stop
	metrics.UpdateActiveSessions(1)
	return nil
}

// Detach stops the attached source and clears the held-note set. The
// presentation layer treats detach as an implicit all-released.
func (s *Service) Detach() {
	s.mu.Lock()
	stop := s.stopSource
	s.stopSource = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	s.mu.Lock()
	s.decoder.Reset()
	s.mu.Unlock()
	metrics.UpdateActiveSessions(0)
}

// Stats returns a snapshot of the active session.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		SessionID:       s.sessionID,
		State:           s.matcher.State(),
		Cursor:          s.matcher.Cursor(),
		Total:           s.total,
		Attempts:        s.matcher.Attempts(),
		CorrectAttempts: s.matcher.CorrectAttempts(),
		Accuracy:        s.matcher.Accuracy(),
		HeldNotes:       s.decoder.Held(),
	}
}

// dispatch is the single consumer of the raw message queue. All decoder
// and matcher mutation happens here, so no two logical events are ever
// processed concurrently.
func (s *Service) dispatch(ctx context.Context) {
	defer close(s.done)

	for msg := range s.queue.Dequeue(ctx) {
		s.mu.Lock()
		events := s.decoder.Decode(msg)
		verdicts := make([]VerdictEvent, 0, len(events))
		for _, ev := range events {
			var verdict session.Verdict
			switch ev.Kind {
			case decode.NoteDown:
				verdict = s.matcher.HandleNoteDown(ev.Pitch)
			case decode.NoteUp:
				verdict = s.matcher.HandleNoteOff(ev.Pitch)
			case decode.AllReleased:
				// No matcher transition; surfaced for the cursor/feedback
				// layer.
			}
			verdicts = append(verdicts, VerdictEvent{
				SessionID: s.sessionID,
				Event:     ev,
				Verdict:   verdict,
				Cursor:    s.matcher.Cursor(),
				State:     s.matcher.State(),
				Accuracy:  s.matcher.Accuracy(),
			})
		}
		handler := s.onVerdict
		s.mu.Unlock()

		if handler != nil {
			for _, v := range verdicts {
				handler(v)
			}
		}
	}
}
