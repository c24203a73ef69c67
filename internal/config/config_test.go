package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.BackoffBase)
	assert.Equal(t, 70.0, cfg.Thresholds.AuthenticityMin)
	assert.Equal(t, 40.0, cfg.Thresholds.MachineLikelihoodMax)
	assert.Equal(t, 3, cfg.Thresholds.Readability.MinSentences)
	require.Len(t, cfg.Detection.Detectors, 3)
	assert.Equal(t, DetectorPattern, cfg.Detection.Detectors[0].ID)
	assert.NotEmpty(t, cfg.Detection.Pattern.Phrases)
	assert.NotEmpty(t, cfg.Detection.Pattern.Constructions)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  max_attempts: 6
  generation_timeout: 10s
thresholds:
  authenticity_min: 80
detection:
  detectors:
    - id: pattern
      weight: 1
enhancement:
  authenticity_tolerance: 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.GenerationTimeout)
	assert.Equal(t, 80.0, cfg.Thresholds.AuthenticityMin)
	assert.Equal(t, 40.0, cfg.Thresholds.MachineLikelihoodMax, "unset values keep defaults")
	require.Len(t, cfg.Detection.Detectors, 1)
	assert.Equal(t, 0.5, cfg.Enhancement.AuthenticityTolerance)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PA_PIPELINE_MAX_ATTEMPTS", "7")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/pa")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://localhost/pa", cfg.DatabaseURL)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Nil(t, cfg)
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedValuesFailFast(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "zero attempts",
			yaml:  "pipeline:\n  max_attempts: 0\n",
			field: "pipeline.max_attempts",
		},
		{
			name:  "threshold above range",
			yaml:  "thresholds:\n  machine_likelihood_max: 140\n",
			field: "thresholds",
		},
		{
			name:  "inverted readability band",
			yaml:  "thresholds:\n  readability:\n    ease_min: 90\n    ease_max: 40\n",
			field: "thresholds",
		},
		{
			name:  "unknown detector",
			yaml:  "detection:\n  detectors:\n    - id: pattern\n      weight: 1\n    - id: oracle\n      weight: 1\n",
			field: "detection.detectors[1]",
		},
		{
			name:  "pattern detector missing",
			yaml:  "detection:\n  detectors:\n    - id: burstiness\n      weight: 1\n",
			field: "detection.detectors",
		},
		{
			name:  "zero weight",
			yaml:  "detection:\n  detectors:\n    - id: pattern\n      weight: 0\n",
			field: "detection.detectors[0]",
		},
		{
			name:  "negative tolerance",
			yaml:  "enhancement:\n  machine_tolerance: -1\n",
			field: "enhancement.machine_tolerance",
		},
		{
			name:  "bad construction",
			yaml:  "detection:\n  pattern:\n    constructions:\n      - \"(unclosed\"\n",
			field: "detection.pattern.constructions[0]",
		},
		{
			name:  "ceiling out of range",
			yaml:  "scoring:\n  hard_failure_ceiling: 120\n",
			field: "scoring.hard_failure_ceiling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			assert.Nil(t, cfg)
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestScoringConfig_Validate_ReportsFirstFieldInOrder(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Scoring.HardFailureCeiling = 150
	cfg.Scoring.PatternBaseline = -5
	cfg.Scoring.ForbiddenPenaltyCap = 101

	for i := 0; i < 20; i++ {
		err := cfg.Scoring.Validate()
		var cfgErr *Error
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "scoring.hard_failure_ceiling", cfgErr.Field)
	}
}

func TestDetectorWeight(t *testing.T) {
	d := DetectionConfig{Detectors: []DetectorConfig{{ID: DetectorPattern, Weight: 0.7}}}
	assert.Equal(t, 0.7, d.DetectorWeight(DetectorPattern))
	assert.Equal(t, 0.0, d.DetectorWeight(DetectorTokenizer))
}

func TestError_Format(t *testing.T) {
	err := &Error{Field: "llm.rps", Message: "must be positive"}
	assert.Equal(t, "config error: 'llm.rps': must be positive", err.Error())

	cause := errors.New("boom")
	wrapped := &Error{Message: "failed", Cause: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "config error: failed: boom", wrapped.Error())
}
