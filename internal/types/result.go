// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResultStatus is the terminal state of a pipeline invocation
type ResultStatus string

// Result statuses
const (
	StatusAccepted  ResultStatus = "accepted"
	StatusExhausted ResultStatus = "exhausted"
)

// Exhaustion reasons
const (
	ReasonMaxAttempts = "max_attempts_exhausted"
	ReasonCancelled   = "cancelled"
)

// Result is the terminal outcome of one pipeline invocation.
// Accepted results carry Text, Report and Attempts; exhausted results carry Best, Reason and History.
type Result struct {
	Status   ResultStatus `json:"status"`
	RunID    string       `json:"run_id"`
	Text     string       `json:"text,omitempty"`
	Report   *ScoreReport `json:"report,omitempty"`
	Attempts int          `json:"attempts"`
	Best     *Attempt     `json:"best,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	History  []Attempt    `json:"history"`
}

// Accepted reports whether the result holds an accepted text
func (r *Result) Accepted() bool {
	return r != nil && r.Status == StatusAccepted
}
