package detection

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks an optional model that could not score a text. The ensemble treats
// it as "not run" and excludes the model from the composite.
var ErrUnavailable = errors.New("detector unavailable")

// unavailable wraps ErrUnavailable with a reason
func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// NoDetectorsError is returned when no detector produced a score. It indicates a
// configuration problem; the ensemble never fabricates a score.
type NoDetectorsError struct {
	Skipped []string
}

func (e *NoDetectorsError) Error() string {
	return fmt.Sprintf("no detector produced a score (skipped: %v)", e.Skipped)
}
