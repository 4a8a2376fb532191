package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/ahmetildirim/sightreading.studio/internal/adapters/midi/registry"
	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// fakeIn is an in-memory drivers.In that replays whatever the test feeds it.
type fakeIn struct {
	name string

	mu    sync.Mutex
	open  bool
	onMsg func(msg []byte, milliseconds int32)
}

func (f *fakeIn) Number() int             { return 0 }
func (f *fakeIn) String() string          { return f.name }
func (f *fakeIn) Underlying() interface{} { return nil }

func (f *fakeIn) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	return nil
}

func (f *fakeIn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	return nil
}

func (f *fakeIn) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeIn) Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMsg = onMsg
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.onMsg = nil
	}, nil
}

func (f *fakeIn) feed(raw []byte) {
	f.mu.Lock()
	onMsg := f.onMsg
	f.mu.Unlock()
	if onMsg != nil {
		onMsg(raw, 0)
	}
}

// fakeDriver exposes a mutable list of fake inputs.
type fakeDriver struct {
	mu  sync.Mutex
	ins []drivers.In
}

func (d *fakeDriver) Ins() ([]drivers.In, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]drivers.In, len(d.ins))
	copy(out, d.ins)
	return out, nil
}

func (d *fakeDriver) Outs() ([]drivers.Out, error) { return nil, nil }
func (d *fakeDriver) String() string               { return "fake" }
func (d *fakeDriver) Close() error                 { return nil }

func (d *fakeDriver) setIns(ins ...drivers.In) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ins = ins
}

func TestRegistryDevices(t *testing.T) {
	Convey("Given a driver with real and virtual ports", t, func() {
		drv := &fakeDriver{}
		drv.setIns(
			&fakeIn{name: "Piano MK-61"},
			&fakeIn{name: "Midi Through Port-0"},
			&fakeIn{name: "Launchkey 49"},
		)
		reg := registry.New(drv)

		Convey("When enumerating devices", func() {
			devices, err := reg.Devices(context.Background())

			Convey("Then virtual ports should be excluded", func() {
				So(err, ShouldBeNil)
				So(devices, ShouldHaveLength, 2)
				So(devices[0].Name, ShouldEqual, "Piano MK-61")
				So(devices[1].Name, ShouldEqual, "Launchkey 49")
			})
		})
	})
}

func TestRegistryPick(t *testing.T) {
	Convey("Given a registry preferring Launchkey devices", t, func() {
		reg := registry.New(&fakeDriver{}, registry.WithPreferredPatterns([]string{"Launchkey"}))

		Convey("When several devices are available", func() {
			picked, ok := reg.Pick([]registry.Device{
				{ID: "a", Name: "Piano MK-61"},
				{ID: "b", Name: "Launchkey 49"},
			})

			Convey("Then the preferred device should win", func() {
				So(ok, ShouldBeTrue)
				So(picked.ID, ShouldEqual, "b")
			})
		})

		Convey("When exactly one device is available", func() {
			picked, ok := reg.Pick([]registry.Device{{ID: "a", Name: "Piano MK-61"}})

			Convey("Then it should be picked even without a pattern match", func() {
				So(ok, ShouldBeTrue)
				So(picked.ID, ShouldEqual, "a")
			})
		})

		Convey("When several devices are available and none is preferred", func() {
			_, ok := reg.Pick([]registry.Device{
				{ID: "a", Name: "Piano MK-61"},
				{ID: "b", Name: "Organ X2"},
			})

			Convey("Then nothing should be picked", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestRegistrySubscribe(t *testing.T) {
	Convey("Given a registry over one fake input", t, func() {
		in := &fakeIn{name: "Piano MK-61"}
		drv := &fakeDriver{}
		drv.setIns(in)
		reg := registry.New(drv)

		Convey("When subscribing to the device", func() {
			var mu sync.Mutex
			var got []decode.Message
			stop, err := reg.Subscribe(context.Background(), "Piano MK-61", func(msg decode.Message) {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, msg)
			})
			So(err, ShouldBeNil)
			defer stop()

			Convey("Then the port should be open", func() {
				So(in.IsOpen(), ShouldBeTrue)
			})

			Convey("And raw 3-byte messages should reach the callback", func() {
				in.feed([]byte{0x90, 60, 100})
				in.feed([]byte{0x80, 60, 0})

				mu.Lock()
				defer mu.Unlock()
				So(got, ShouldHaveLength, 2)
				So(got[0], ShouldResemble, decode.Message{Status: 0x90, Pitch: 60, Velocity: 100})
				So(got[1], ShouldResemble, decode.Message{Status: 0x80, Pitch: 60, Velocity: 0})
			})

			Convey("And stopping should close the port", func() {
				stop()
				So(in.IsOpen(), ShouldBeFalse)
			})
		})

		Convey("When subscribing to an unknown device", func() {
			_, err := reg.Subscribe(context.Background(), "nope", func(decode.Message) {})

			Convey("Then it should fail with ErrDeviceNotFound", func() {
				So(errors.Is(err, registry.ErrDeviceNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestRegistryWatch(t *testing.T) {
	Convey("Given a registry watching for hot-plug changes", t, func() {
		drv := &fakeDriver{}
		reg := registry.New(drv,
			registry.WithPollInterval(10*time.Millisecond),
			registry.WithDebounceWindow(5*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		var last []registry.Device
		changes := 0
		go reg.Watch(ctx, func(devices []registry.Device) {
			mu.Lock()
			defer mu.Unlock()
			last = devices
			changes++
		})

		Convey("When a device appears", func() {
			drv.setIns(&fakeIn{name: "Piano MK-61"})
			time.Sleep(100 * time.Millisecond)

			Convey("Then the change should be reported once", func() {
				mu.Lock()
				defer mu.Unlock()
				So(changes, ShouldEqual, 1)
				So(last, ShouldHaveLength, 1)
				So(last[0].Name, ShouldEqual, "Piano MK-61")
			})

			Convey("And when it disappears again", func() {
				drv.setIns()
				time.Sleep(100 * time.Millisecond)

				Convey("Then the empty list should be reported", func() {
					mu.Lock()
					defer mu.Unlock()
					So(changes, ShouldEqual, 2)
					So(last, ShouldBeEmpty)
				})
			})
		})
	})
}
