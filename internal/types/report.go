// Package types provides type definitions for structured data used throughout the authenticity pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// AuthenticityReport is the outcome of scoring text against a persona's linguistic signature.
type AuthenticityReport struct {
	Score            float64  `json:"score"`
	LanguageMatch    float64  `json:"language_match"`
	ArtifactPenalty  float64  `json:"artifact_penalty"`
	PatternMatch     float64  `json:"pattern_match"`
	DetectedLanguage string   `json:"detected_language"`
	ExpectedLanguage string   `json:"expected_language"`
	HardFailure      bool     `json:"hard_failure"`
	Artifacts        []string `json:"artifacts,omitempty"`
	SignatureHits    []string `json:"signature_hits,omitempty"`
	ForbiddenHits    []string `json:"forbidden_hits,omitempty"`
}

// DetectorScore is the contribution of one detector that actually ran
type DetectorScore struct {
	Detector string   `json:"detector"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Matches  []string `json:"matches,omitempty"`
}

// SkippedDetector records a configured detector that did not contribute and why
type SkippedDetector struct {
	Detector string `json:"detector"`
	Reason   string `json:"reason"`
}

// DetectionReport is the composite machine-likelihood verdict of the detector ensemble.
type DetectionReport struct {
	Score     float64           `json:"score"`
	Detectors []DetectorScore   `json:"detectors"`
	Skipped   []SkippedDetector `json:"skipped,omitempty"`
	// Partial is set when the score is pattern-only: no statistical or model-based
	// detector was configured or none of them ran
	Partial bool `json:"partial"`
}

// Matches returns every signature matched by the detectors that ran, in detector order.
func (r DetectionReport) Matches() []string {
	var out []string
	for _, d := range r.Detectors {
		out = append(out, d.Matches...)
	}
	return out
}

// ReadabilityReport holds raw readability metrics and their verdict against the configured band.
type ReadabilityReport struct {
	Ease          float64  `json:"ease"`
	Grade         float64  `json:"grade"`
	GradeComputed bool     `json:"grade_computed"`
	Sentences     int      `json:"sentences"`
	Words         int      `json:"words"`
	Syllables     int      `json:"syllables"`
	Pass          bool     `json:"pass"`
	Failures      []string `json:"failures,omitempty"`
}

// ScoreReport combines the three scoring axes for one candidate. It is never mutated after creation.
type ScoreReport struct {
	Authenticity AuthenticityReport `json:"authenticity"`
	Detection    DetectionReport    `json:"detection"`
	Readability  ReadabilityReport  `json:"readability"`
	Pass         bool               `json:"pass"`
}

// Margin is the authenticity score minus the machine-likelihood score, used to rank attempts.
func (r *ScoreReport) Margin() float64 {
	return r.Authenticity.Score - r.Detection.Score
}

// FailedAxes lists which scoring axes fell outside the given thresholds.
func (r *ScoreReport) FailedAxes(t Thresholds) []string {
	var failed []string
	if r.Authenticity.Score < t.AuthenticityMin {
		failed = append(failed, AxisAuthenticity)
	}
	if r.Detection.Score > t.MachineLikelihoodMax {
		failed = append(failed, AxisMachineLikelihood)
	}
	if !r.Readability.Pass {
		failed = append(failed, AxisReadability)
	}
	return failed
}

// Scoring axis names
const (
	AxisAuthenticity      = "authenticity"
	AxisMachineLikelihood = "machine_likelihood"
	AxisReadability       = "readability"
)
