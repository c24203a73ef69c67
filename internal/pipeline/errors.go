package pipeline

import (
	"fmt"

	"github.com/jonathan/persona-authenticity/internal/llm"
)

// NonRetryableGenerationError aborts an invocation after an authentication or service failure
// from the generation service.
type NonRetryableGenerationError struct {
	RunID   string
	Attempt int
	Cause   *llm.GenerationError
}

func (e *NonRetryableGenerationError) Error() string {
	return fmt.Sprintf("generation failed on attempt %d (run %s): %v", e.Attempt, e.RunID, e.Cause)
}

func (e *NonRetryableGenerationError) Unwrap() error {
	return e.Cause
}

// TransientGenerationError is recorded on an attempt whose generation call kept timing out
// or being rate limited after every allowed retry. It never leaves Run.
type TransientGenerationError struct {
	Attempt int
	Retries int
	Cause   *llm.GenerationError
}

func (e *TransientGenerationError) Error() string {
	return fmt.Sprintf("attempt %d gave up after %d transient retries: %v", e.Attempt, e.Retries, e.Cause)
}

func (e *TransientGenerationError) Unwrap() error {
	return e.Cause
}
