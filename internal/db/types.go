package db

import (
	"time"

	"github.com/google/uuid"
)

// Run is a persisted pipeline invocation
type Run struct {
	ID          uuid.UUID `json:"id"`
	PersonaID   string    `json:"persona_id"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Attempts    int       `json:"attempts"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// attemptColumns is the column order used when copying attempts
var attemptColumns = []string{
	"id", "run_id", "number", "decision", "candidate", "report", "prompt",
	"transient_retries", "generation_error", "enhancement_tried", "enhancement_degraded",
}
