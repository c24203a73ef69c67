// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateText is one generated text and the attempt that produced it.
type CandidateText struct {
	Text    string `json:"text"`
	Attempt int    `json:"attempt"`
}

// Decision is the outcome of evaluating a ScoreReport against a request's thresholds.
type Decision string

// Decision values
const (
	DecisionAccept     Decision = "accept"
	DecisionEnhance    Decision = "enhance"
	DecisionRegenerate Decision = "regenerate"
	DecisionFail       Decision = "fail"
)

// StructureSignature summarises the surface structure of a text.
type StructureSignature struct {
	Opener            string  `json:"opener"`
	Sentences         int     `json:"sentences"`
	Paragraphs        int     `json:"paragraphs"`
	MeanSentenceWords float64 `json:"mean_sentence_words"`
	EndsWithQuestion  bool    `json:"ends_with_question"`
	EndsWithExclaim   bool    `json:"ends_with_exclaim"`
}

// Attempt is one generate-score-decide cycle. Attempts are appended to an invocation's
// history in order and are never modified once the next attempt starts.
type Attempt struct {
	Number           int                 `json:"number"`
	Request          GenerationRequest   `json:"request"`
	Prompt           PromptSpec          `json:"prompt"`
	Candidate        *CandidateText      `json:"candidate,omitempty"`
	Report           *ScoreReport        `json:"report,omitempty"`
	Structure        *StructureSignature `json:"structure,omitempty"`
	TransientRetries int                 `json:"transient_retries"`
	GenerationError  string              `json:"generation_error,omitempty"`

	EnhancementTried    bool         `json:"enhancement_tried"`
	EnhancementDegraded bool         `json:"enhancement_degraded"`
	BaselineReport      *ScoreReport `json:"baseline_report,omitempty"`

	Decision Decision `json:"decision"`
}

// Scored reports whether the attempt produced a candidate that was scored
func (a *Attempt) Scored() bool {
	return a.Candidate != nil && a.Report != nil
}
