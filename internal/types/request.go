// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// GenerationRequest asks the pipeline for one piece of text written as a target persona.
type GenerationRequest struct {
	PersonaID   string         `json:"persona_id" validate:"required"`
	ContentType string         `json:"content_type" validate:"required"`
	Length      LengthRange    `json:"length"`
	Facts       map[string]any `json:"facts,omitempty"`
	// Thresholds overrides the configured defaults when set
	Thresholds *Thresholds `json:"thresholds,omitempty" validate:"omitempty"`
}

// LengthRange is an inclusive word-count range
type LengthRange struct {
	MinWords int `json:"min_words" validate:"gt=0"`
	MaxWords int `json:"max_words" validate:"gtefield=MinWords"`
}

// Thresholds are the quality gates a candidate must pass to be accepted.
type Thresholds struct {
	AuthenticityMin      float64         `json:"authenticity_min" mapstructure:"authenticity_min" validate:"gte=0,lte=100"`
	MachineLikelihoodMax float64         `json:"machine_likelihood_max" mapstructure:"machine_likelihood_max" validate:"gte=0,lte=100"`
	Readability          ReadabilityBand `json:"readability" mapstructure:"readability"`
}

// ReadabilityBand is the acceptable range for readability metrics.
// Texts with fewer than MinSentences sentences are judged on ease only.
type ReadabilityBand struct {
	EaseMin      float64 `json:"ease_min" mapstructure:"ease_min" validate:"ltefield=EaseMax"`
	EaseMax      float64 `json:"ease_max" mapstructure:"ease_max"`
	GradeMin     float64 `json:"grade_min" mapstructure:"grade_min" validate:"ltefield=GradeMax"`
	GradeMax     float64 `json:"grade_max" mapstructure:"grade_max"`
	MinSentences int     `json:"min_sentences" mapstructure:"min_sentences" validate:"gte=1"`
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the Thresholds using the validator.
func (t *Thresholds) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}
