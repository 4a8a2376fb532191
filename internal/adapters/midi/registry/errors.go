package registry

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrNoDevices      = errors.New("no input devices available")
	ErrDeviceNotFound = errors.New("input device not found")
)
