package generate

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	// ErrInvalidConfig covers any unusable generation parameter.
	ErrInvalidConfig = errors.New("invalid generation config")

	// ErrEmptyRange is the zero-candidate-pitch specialization of
	// ErrInvalidConfig; errors.Is matches both sentinels.
	ErrEmptyRange = fmt.Errorf("%w: no natural pitch in range", ErrInvalidConfig)
)
