package simulator_test

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/simulator"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/pitch"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/session"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func collect(src *simulator.Source, expect int) []decode.Message {
	out := make(chan decode.Message, 256)
	stop, _ := src.Subscribe(context.Background(), func(msg decode.Message) {
		out <- msg
	})
	defer stop()

	var got []decode.Message
	timeout := time.After(5 * time.Second)
	for len(got) < expect {
		select {
		case msg := <-out:
			got = append(got, msg)
		case <-timeout:
			return got
		}
	}
	return got
}

func TestSourceCleanRun(t *testing.T) {
	Convey("Given a clean scripted performance of [60, 62, 64]", t, func() {
		expected := []pitch.Pitch{60, 62, 64}
		src := simulator.New(simulator.WithInterval(time.Millisecond))
		src.LoadExpected(expected)

		Convey("When replaying through decoder and matcher", func() {
			got := collect(src, 6)
			So(got, ShouldHaveLength, 6)

			d := decode.NewDecoder()
			m := session.NewMatcher()
			m.Reset(expected)
			for _, msg := range got {
				for _, ev := range d.Decode(msg) {
					switch ev.Kind {
					case decode.NoteDown:
						m.HandleNoteDown(ev.Pitch)
					case decode.NoteUp:
						m.HandleNoteOff(ev.Pitch)
					}
				}
			}

			Convey("Then the session should complete with full accuracy", func() {
				So(m.State(), ShouldEqual, session.StateComplete)
				So(m.Accuracy(), ShouldEqual, 100)
				So(m.Attempts(), ShouldEqual, 3)
			})
		})
	})
}

func TestSourceMistakes(t *testing.T) {
	Convey("Given a performance with guaranteed mistakes", t, func() {
		expected := []pitch.Pitch{60, 62, 64, 65}
		src := simulator.New(
			simulator.WithInterval(time.Millisecond),
			simulator.WithMistakeRate(1),
			simulator.WithSeed(7),
		)
		src.LoadExpected(expected)

		Convey("When replaying through decoder and matcher", func() {
			So(src.ScriptLen(), ShouldBeGreaterThan, 2*len(expected))
			got := collect(src, src.ScriptLen())
			So(got, ShouldHaveLength, src.ScriptLen())

			d := decode.NewDecoder()
			m := session.NewMatcher()
			m.Reset(expected)
			for _, msg := range got {
				for _, ev := range d.Decode(msg) {
					switch ev.Kind {
					case decode.NoteDown:
						m.HandleNoteDown(ev.Pitch)
					case decode.NoteUp:
						m.HandleNoteOff(ev.Pitch)
					}
				}
			}

			Convey("Then the session should still complete despite the noise", func() {
				So(m.State(), ShouldEqual, session.StateComplete)
				So(m.CorrectAttempts(), ShouldEqual, len(expected))
				So(m.Attempts(), ShouldBeGreaterThanOrEqualTo, m.CorrectAttempts())
			})
		})
	})
}

func TestSourceStop(t *testing.T) {
	Convey("Given a long scripted performance", t, func() {
		src := simulator.New(simulator.WithInterval(50 * time.Millisecond))
		src.LoadExpected([]pitch.Pitch{60, 62, 64, 65, 67, 69, 71, 72})

		Convey("When stopping right after subscribing", func() {
			count := 0
			stop, err := src.Subscribe(context.Background(), func(decode.Message) { count++ })
			So(err, ShouldBeNil)
			stop()
			time.Sleep(120 * time.Millisecond)

			Convey("Then playback should halt early", func() {
				So(count, ShouldBeLessThan, 3)
			})
		})
	})
}
