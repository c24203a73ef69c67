// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

const (
	// MaxSignaturePhrases bounds the signature phrase list of a persona
	MaxSignaturePhrases = 64
	// MaxForbiddenPhrases bounds the forbidden phrase list of a persona
	MaxForbiddenPhrases = 128
	// IntensityMin is the lowest intensity a persona parameter can hold
	IntensityMin = 0
	// IntensityMax is the highest intensity a persona parameter can hold
	IntensityMax = 100
)

// PersonaProfile is a named bundle of linguistic style parameters applied to generated text.
// Profiles are immutable once loaded by the persona store.
type PersonaProfile struct {
	ID               string            `json:"id" yaml:"id" validate:"required"`
	Locale           string            `json:"locale" yaml:"locale" validate:"required"`
	Language         string            `json:"language" yaml:"language" validate:"required"`
	SourceLocale     string            `json:"source_locale,omitempty" yaml:"source_locale,omitempty"`
	Traits           []Trait           `json:"traits" yaml:"traits" validate:"dive"`
	SignaturePhrases []string          `json:"signature_phrases" yaml:"signature_phrases" validate:"max=64,dive,required"`
	ForbiddenPhrases []string          `json:"forbidden_phrases" yaml:"forbidden_phrases" validate:"max=128,dive,required"`
	Calques          []string          `json:"calques,omitempty" yaml:"calques,omitempty" validate:"dive,required"`
	Substitutions    map[string]string `json:"substitutions,omitempty" yaml:"substitutions,omitempty"`
	Intensity        Intensity         `json:"intensity" yaml:"intensity"`
}

// Trait is a single named linguistic tendency with the instruction that expresses it
type Trait struct {
	Name      string `json:"name" yaml:"name" validate:"required"`
	Directive string `json:"directive" yaml:"directive" validate:"required"`
}

// Intensity holds the 0-100 strength parameters controlling how strongly traits are applied.
type Intensity struct {
	Traits       int `json:"traits" yaml:"traits"`
	Markers      int `json:"markers" yaml:"markers"`
	Imperfection int `json:"imperfection" yaml:"imperfection"`
}

// Clamped returns a copy with every parameter clamped to [IntensityMin, IntensityMax].
func (i Intensity) Clamped() Intensity {
	return Intensity{
		Traits:       ClampIntensity(i.Traits),
		Markers:      ClampIntensity(i.Markers),
		Imperfection: ClampIntensity(i.Imperfection),
	}
}

// Validate validates the PersonaProfile using the validator.
func (p *PersonaProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ClampIntensity clamps a single intensity value
func ClampIntensity(v int) int {
	if v < IntensityMin {
		return IntensityMin
	}
	if v > IntensityMax {
		return IntensityMax
	}
	return v
}
