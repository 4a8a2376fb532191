package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/simulator"
	"github.com/ahmetildirim/sightreading.studio/internal/app"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/generate"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/notation"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/session"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func practiceParams(total int) generate.Params {
	return generate.Params{
		Range:           generate.RangeSpec{Min: 60, Max: 72, Clef: notation.ClefTreble},
		NotesPerMeasure: 4,
		TotalNotes:      total,
		Seed:            11,
	}
}

type verdictLog struct {
	mu     sync.Mutex
	events []app.VerdictEvent
}

func (l *verdictLog) record(v app.VerdictEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, v)
}

func (l *verdictLog) snapshot() []app.VerdictEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]app.VerdictEvent, len(l.events))
	copy(out, l.events)
	return out
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := app.New(app.WithQueueSize(64))

		Convey("When starting it", func() {
			err := svc.Start(context.Background())
			So(err, ShouldBeNil)
			defer svc.Stop()

			Convey("Then starting again should fail", func() {
				So(svc.Start(context.Background()), ShouldNotBeNil)
			})

			Convey("Then attaching twice should fail", func() {
				src := simulator.New()
				stopErr := svc.Attach(context.Background(), src)
				So(stopErr, ShouldBeNil)
				So(svc.Attach(context.Background(), src), ShouldNotBeNil)
				svc.Detach()
			})
		})

		Convey("When attaching before start", func() {
			So(svc.Attach(context.Background(), simulator.New()), ShouldNotBeNil)
		})

		Convey("When stopping without start", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestServiceNewExercise(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := app.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When generating an exercise", func() {
			ex, err := svc.NewExercise(context.Background(), practiceParams(8))

			Convey("Then it should carry a session ID, document, and sequence", func() {
				So(err, ShouldBeNil)
				So(ex.SessionID, ShouldNotBeEmpty)
				So(ex.Expected, ShouldHaveLength, 8)
				So(ex.Document.NoteCount(), ShouldEqual, 8)
			})

			Convey("And the stats should reflect the fresh session", func() {
				So(err, ShouldBeNil)
				stats := svc.Stats()
				So(stats.SessionID, ShouldEqual, ex.SessionID)
				So(stats.State, ShouldEqual, session.StateAwaiting)
				So(stats.Cursor, ShouldEqual, 0)
				So(stats.Total, ShouldEqual, 8)
				So(stats.Accuracy, ShouldEqual, 100)
			})

			Convey("And a second exercise should replace the first", func() {
				So(err, ShouldBeNil)
				next, err2 := svc.NewExercise(context.Background(), practiceParams(4))
				So(err2, ShouldBeNil)
				So(next.SessionID, ShouldNotEqual, ex.SessionID)
				So(svc.Stats().Total, ShouldEqual, 4)
			})
		})

		Convey("When generating with an invalid config", func() {
			_, err := svc.NewExercise(context.Background(), generate.Params{
				Range:           generate.RangeSpec{Min: 60, Max: 72, Clef: notation.ClefTreble},
				NotesPerMeasure: 0,
				TotalNotes:      8,
			})

			Convey("Then the generator error should surface", func() {
				So(errors.Is(err, generate.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestServicePracticeLoop(t *testing.T) {
	Convey("Given a service with a verdict handler and a clean simulator", t, func() {
		log := &verdictLog{}
		svc := app.New(app.WithVerdictHandler(log.record))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		ex, err := svc.NewExercise(context.Background(), practiceParams(6))
		So(err, ShouldBeNil)

		src := simulator.New(simulator.WithInterval(time.Millisecond))
		src.LoadExpected(ex.Expected)

		Convey("When the simulated performance plays through", func() {
			So(svc.Attach(context.Background(), src), ShouldBeNil)
			defer svc.Detach()

			deadline := time.Now().Add(5 * time.Second)
			for svc.Stats().State != session.StateComplete && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			Convey("Then the session should complete with full accuracy", func() {
				stats := svc.Stats()
				So(stats.State, ShouldEqual, session.StateComplete)
				So(stats.Cursor, ShouldEqual, 6)
				So(stats.Attempts, ShouldEqual, 6)
				So(stats.CorrectAttempts, ShouldEqual, 6)
				So(stats.Accuracy, ShouldEqual, 100)
				So(stats.HeldNotes, ShouldEqual, 0)
			})

			Convey("Then the verdict log should end in a complete verdict", func() {
				events := log.snapshot()
				So(events, ShouldNotBeEmpty)

				var last app.VerdictEvent
				for _, ev := range events {
					if ev.Verdict != "" {
						last = ev
					}
				}
				So(last.Verdict, ShouldEqual, session.VerdictComplete)
				So(last.SessionID, ShouldEqual, ex.SessionID)
			})
		})
	})
}
