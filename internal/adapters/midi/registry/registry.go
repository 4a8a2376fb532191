// Package registry enumerates MIDI input sources and binds the engine to
// one of them. It holds no matching logic; the core only needs to know
// which raw stream to subscribe to.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
)

// Default registry configuration constants.
const (
	defaultPollInterval   = time.Second
	defaultDebounceWindow = 200 * time.Millisecond
	rawMessageLength      = 3
)

// Device identifies a hardware input source. Instances are transient,
// rebuilt on every enumeration.
type Device struct {
	ID   string
	Name string
}

// Registry lists MIDI inputs of an underlying driver and opens raw
// subscriptions on them.
type Registry struct {
	drv      drivers.Driver
	poll     time.Duration
	debounce time.Duration
	excluded []string
	prefer   []string
	logger   logger.Logger

	mu   sync.Mutex
	open drivers.In
	stop func()
}

// New creates a registry over a MIDI driver with configuration options.
func New(drv drivers.Driver, opts ...Option) *Registry {
	r := &Registry{
		drv:      drv,
		poll:     defaultPollInterval,
		debounce: defaultDebounceWindow,
		excluded: []string{"Midi Through", "Through Port", "Dummy"},
		logger:   logger.Get().Named("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Devices enumerates the currently available input sources, excluding
// virtual/system ports.
func (r *Registry) Devices(ctx context.Context) ([]Device, error) {
	ins, err := r.drv.Ins()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(ins))
	for _, in := range ins {
		name := in.String()
		if r.isExcluded(name) {
			continue
		}
		devices = append(devices, Device{ID: name, Name: name})
	}
	r.logger.Debug(ctx, "inputs enumerated", logger.Int("count", len(devices)))
	return devices, nil
}

// Pick selects a device: the first matching a preferred pattern, or the
// only device when exactly one is available.
func (r *Registry) Pick(devices []Device) (Device, bool) {
	for _, pat := range r.prefer {
		for _, d := range devices {
			if containsCI(d.Name, pat) {
				return d, true
			}
		}
	}
	if len(devices) == 1 {
		return devices[0], true
	}
	return Device{}, false
}

// Subscribe opens the named device and delivers its raw 3-byte messages to
// fn from the driver's listener goroutine. The returned stop function
// closes the subscription and the port. A failed subscribe leaves the
// registry usable; the caller degrades to receiving no events.
func (r *Registry) Subscribe(ctx context.Context, deviceID string, fn func(decode.Message)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ins, err := r.drv.Ins()
	if err != nil {
		return nil, err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == deviceID {
			found = in
			break
		}
	}
	if found == nil {
		return nil, ErrDeviceNotFound
	}
	if err := found.Open(); err != nil {
		return nil, err
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		raw := msg.Bytes()
		if len(raw) < rawMessageLength {
			return
		}
		fn(decode.Message{Status: raw[0], Pitch: raw[1], Velocity: raw[2]})
	}, midi.HandleError(func(listenErr error) {
		r.logger.Warn(ctx, "listener error, source likely disconnected",
			logger.String("device", deviceID), logger.Error(listenErr))
	}))
	if err != nil {
		_ = found.Close()
		return nil, err
	}

	r.open = found
	r.stop = stop
	r.logger.Info(ctx, "subscribed to input", logger.String("device", deviceID))

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.stop != nil {
			r.stop()
			r.stop = nil
		}
		if r.open != nil {
			_ = r.open.Close()
			r.open = nil
		}
		r.logger.Info(ctx, "unsubscribed from input", logger.String("device", deviceID))
	}, nil
}

// Watch polls for hot-plug changes until ctx is done, invoking onChange
// with the fresh device list whenever membership changes. Change bursts are
// debounced so a flapping port reports once.
func (r *Registry) Watch(ctx context.Context, onChange func([]Device)) {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	debounced := debounce.New(r.debounce)
	var last []Device

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			devices, err := r.Devices(ctx)
			if err != nil {
				r.logger.Warn(ctx, "enumeration failed", logger.Error(err))
				continue
			}
			if sameDevices(last, devices) {
				continue
			}
			last = devices
			snapshot := devices
			debounced(func() { onChange(snapshot) })
		}
	}
}

func (r *Registry) isExcluded(name string) bool {
	for _, pat := range r.excluded {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func sameDevices(a, b []Device) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
