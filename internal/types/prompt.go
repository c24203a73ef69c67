// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DirectiveKind groups corrective directives by what triggered them
type DirectiveKind string

// Directive kinds
const (
	DirectiveVaryStructure DirectiveKind = "vary_structure"
	DirectiveImperfection  DirectiveKind = "imperfection"
	DirectiveAuthenticity  DirectiveKind = "authenticity"
	DirectiveMachine       DirectiveKind = "machine_likelihood"
	DirectiveReadability   DirectiveKind = "readability"
)

// Directive is one corrective instruction added to a prompt in response to earlier failures.
type Directive struct {
	ID   string        `json:"id"`
	Kind DirectiveKind `json:"kind"`
	Text string        `json:"text"`
}

// PromptSpec is the single instruction sent to the generation service for one attempt.
type PromptSpec struct {
	Attempt     int         `json:"attempt"`
	PersonaID   string      `json:"persona_id"`
	ContentType string      `json:"content_type"`
	Text        string      `json:"text"`
	Directives  []Directive `json:"directives,omitempty"`
}

// DirectiveIDs returns the ids of the corrective directives in prompt order
func (p PromptSpec) DirectiveIDs() []string {
	ids := make([]string, 0, len(p.Directives))
	for _, d := range p.Directives {
		ids = append(ids, d.ID)
	}
	return ids
}
