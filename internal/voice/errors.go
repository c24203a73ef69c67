package voice

import (
	"errors"
	"fmt"
)

// ErrEnhancementRejected marks an enhancement that would have lowered authenticity or raised
// machine likelihood beyond tolerance.
var ErrEnhancementRejected = errors.New("enhancement rejected")

// RejectionError carries the score movement that caused a rejection.
type RejectionError struct {
	AuthenticityDrop float64
	MachineRise      float64
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%v: authenticity %+.2f, machine likelihood %+.2f", ErrEnhancementRejected, -e.AuthenticityDrop, e.MachineRise)
}

// Is matches ErrEnhancementRejected
func (e *RejectionError) Is(target error) bool {
	return target == ErrEnhancementRejected
}
