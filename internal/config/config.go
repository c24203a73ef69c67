// Package config provides configuration loading and validation for the authenticity pipeline.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/persona-authenticity/internal/types"
)

// EnvPrefix is the prefix for environment overrides, e.g. PA_PIPELINE_MAX_ATTEMPTS.
const EnvPrefix = "PA"

// Known detector ids
const (
	DetectorPattern    = "pattern"
	DetectorBurstiness = "burstiness"
	DetectorTokenizer  = "tokenizer"
)

// Config is the runtime configuration of the pipeline and CLI.
type Config struct {
	Logger       LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Pipeline     PipelineConfig    `mapstructure:"pipeline" yaml:"pipeline"`
	Thresholds   types.Thresholds  `mapstructure:"thresholds" yaml:"thresholds"`
	Scoring      ScoringConfig     `mapstructure:"scoring" yaml:"scoring"`
	Detection    DetectionConfig   `mapstructure:"detection" yaml:"detection"`
	Enhancement  EnhancementConfig `mapstructure:"enhancement" yaml:"enhancement"`
	Composer     ComposerConfig    `mapstructure:"composer" yaml:"composer"`
	LLM          LLMConfig         `mapstructure:"llm" yaml:"llm"`
	PersonasFile string            `mapstructure:"personas_file" yaml:"personas_file"`
	DatabaseURL  string            `mapstructure:"database_url" yaml:"-"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// PipelineConfig bounds the retry loop and batch execution.
type PipelineConfig struct {
	MaxAttempts         int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	MaxTransientRetries int           `mapstructure:"max_transient_retries" yaml:"max_transient_retries"`
	BackoffBase         time.Duration `mapstructure:"backoff_base" yaml:"backoff_base"`
	BackoffMax          time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
	GenerationTimeout   time.Duration `mapstructure:"generation_timeout" yaml:"generation_timeout"`
	Concurrency         int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// ScoringConfig holds the authenticity scoring constants.
type ScoringConfig struct {
	LanguageMismatchPenalty    float64        `mapstructure:"language_mismatch_penalty" yaml:"language_mismatch_penalty"`
	HardFailureCeiling         float64        `mapstructure:"hard_failure_ceiling" yaml:"hard_failure_ceiling"`
	UndeterminedLanguageScore  float64        `mapstructure:"undetermined_language_score" yaml:"undetermined_language_score"`
	LanguageMinHits            int            `mapstructure:"language_min_hits" yaml:"language_min_hits"`
	ArtifactPenalty            float64        `mapstructure:"artifact_penalty" yaml:"artifact_penalty"`
	ArtifactPenaltyCap         float64        `mapstructure:"artifact_penalty_cap" yaml:"artifact_penalty_cap"`
	PatternBaseline            float64        `mapstructure:"pattern_baseline" yaml:"pattern_baseline"`
	SignatureReward            float64        `mapstructure:"signature_reward" yaml:"signature_reward"`
	SignatureRewardCap         float64        `mapstructure:"signature_reward_cap" yaml:"signature_reward_cap"`
	ForbiddenPenalty           float64        `mapstructure:"forbidden_penalty" yaml:"forbidden_penalty"`
	ForbiddenPenaltyCap        float64        `mapstructure:"forbidden_penalty_cap" yaml:"forbidden_penalty_cap"`
	Weights                    ScoringWeights `mapstructure:"weights" yaml:"weights"`
	PersonaCacheSize           int            `mapstructure:"persona_cache_size" yaml:"persona_cache_size"`
	ReduplicationAllowedTokens []string       `mapstructure:"reduplication_allowed" yaml:"reduplication_allowed"`
}

// ScoringWeights are the relative weights of the authenticity sub-scores
type ScoringWeights struct {
	Language float64 `mapstructure:"language" yaml:"language"`
	Artifact float64 `mapstructure:"artifact" yaml:"artifact"`
	Pattern  float64 `mapstructure:"pattern" yaml:"pattern"`
}

// DetectionConfig configures the detector ensemble.
type DetectionConfig struct {
	Detectors  []DetectorConfig `mapstructure:"detectors" yaml:"detectors"`
	Pattern    PatternConfig    `mapstructure:"pattern" yaml:"pattern"`
	Burstiness BurstinessConfig `mapstructure:"burstiness" yaml:"burstiness"`
	Tokenizer  TokenizerConfig  `mapstructure:"tokenizer" yaml:"tokenizer"`
}

// DetectorConfig selects one detector and its weight in the composite score
type DetectorConfig struct {
	ID     string  `mapstructure:"id" yaml:"id"`
	Weight float64 `mapstructure:"weight" yaml:"weight"`
}

// PatternConfig is the machine-signature table of the pattern detector.
// Phrases match as whole words; Constructions are case-insensitive regular expressions.
type PatternConfig struct {
	Phrases       []string `mapstructure:"phrases" yaml:"phrases"`
	Constructions []string `mapstructure:"constructions" yaml:"constructions"`
	DensityScale  float64  `mapstructure:"density_scale" yaml:"density_scale"`
	MinWords      int      `mapstructure:"min_words" yaml:"min_words"`
}

// BurstinessConfig maps sentence-length variation onto a machine-likelihood score
type BurstinessConfig struct {
	MinSentences int     `mapstructure:"min_sentences" yaml:"min_sentences"`
	LowCV        float64 `mapstructure:"low_cv" yaml:"low_cv"`
	HighCV       float64 `mapstructure:"high_cv" yaml:"high_cv"`
}

// TokenizerConfig maps the tokens-per-word ratio onto a machine-likelihood score
type TokenizerConfig struct {
	Encoding  string  `mapstructure:"encoding" yaml:"encoding"`
	LowRatio  float64 `mapstructure:"low_ratio" yaml:"low_ratio"`
	HighRatio float64 `mapstructure:"high_ratio" yaml:"high_ratio"`
	MinWords  int     `mapstructure:"min_words" yaml:"min_words"`
}

// EnhancementConfig bounds the voice enhancer.
type EnhancementConfig struct {
	AuthenticityTolerance float64 `mapstructure:"authenticity_tolerance" yaml:"authenticity_tolerance"`
	MachineTolerance      float64 `mapstructure:"machine_tolerance" yaml:"machine_tolerance"`
	MaxInjections         int     `mapstructure:"max_injections" yaml:"max_injections"`
}

// ComposerConfig controls prompt escalation.
type ComposerConfig struct {
	ImperfectionThreshold int      `mapstructure:"imperfection_threshold" yaml:"imperfection_threshold"`
	ContentTypes          []string `mapstructure:"content_types" yaml:"content_types"`
}

// LLMConfig configures the generation client.
type LLMConfig struct {
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"-"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
	RPS         float64 `mapstructure:"rps" yaml:"rps"`
	Burst       int     `mapstructure:"burst" yaml:"burst"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "authenticity-agent")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Pipeline --
	v.SetDefault("pipeline.max_attempts", 4)
	v.SetDefault("pipeline.max_transient_retries", 3)
	v.SetDefault("pipeline.backoff_base", "500ms")
	v.SetDefault("pipeline.backoff_max", "8s")
	v.SetDefault("pipeline.generation_timeout", "45s")
	v.SetDefault("pipeline.concurrency", 4)

	// -- Thresholds --
	v.SetDefault("thresholds.authenticity_min", 70.0)
	v.SetDefault("thresholds.machine_likelihood_max", 40.0)
	v.SetDefault("thresholds.readability.ease_min", 30.0)
	v.SetDefault("thresholds.readability.ease_max", 110.0)
	v.SetDefault("thresholds.readability.grade_min", 0.0)
	v.SetDefault("thresholds.readability.grade_max", 12.0)
	v.SetDefault("thresholds.readability.min_sentences", 3)

	// -- Scoring --
	v.SetDefault("scoring.language_mismatch_penalty", 80.0)
	v.SetDefault("scoring.hard_failure_ceiling", 20.0)
	v.SetDefault("scoring.undetermined_language_score", 75.0)
	v.SetDefault("scoring.language_min_hits", 3)
	v.SetDefault("scoring.artifact_penalty", 10.0)
	v.SetDefault("scoring.artifact_penalty_cap", 50.0)
	v.SetDefault("scoring.pattern_baseline", 50.0)
	v.SetDefault("scoring.signature_reward", 12.0)
	v.SetDefault("scoring.signature_reward_cap", 50.0)
	v.SetDefault("scoring.forbidden_penalty", 15.0)
	v.SetDefault("scoring.forbidden_penalty_cap", 50.0)
	v.SetDefault("scoring.weights.language", 0.3)
	v.SetDefault("scoring.weights.artifact", 0.2)
	v.SetDefault("scoring.weights.pattern", 0.5)
	v.SetDefault("scoring.persona_cache_size", 128)
	v.SetDefault("scoring.reduplication_allowed", []string{"ha", "haha", "bye", "no", "that"})

	// -- Detection --
	v.SetDefault("detection.detectors", []map[string]interface{}{
		{"id": DetectorPattern, "weight": 0.5},
		{"id": DetectorBurstiness, "weight": 0.3},
		{"id": DetectorTokenizer, "weight": 0.2},
	})
	v.SetDefault("detection.pattern.phrases", defaultMachinePhrases)
	v.SetDefault("detection.pattern.constructions", defaultConstructions)
	v.SetDefault("detection.pattern.density_scale", 25.0)
	v.SetDefault("detection.pattern.min_words", 30)
	v.SetDefault("detection.burstiness.min_sentences", 3)
	v.SetDefault("detection.burstiness.low_cv", 0.2)
	v.SetDefault("detection.burstiness.high_cv", 0.7)
	v.SetDefault("detection.tokenizer.encoding", "cl100k_base")
	v.SetDefault("detection.tokenizer.low_ratio", 1.15)
	v.SetDefault("detection.tokenizer.high_ratio", 1.6)
	v.SetDefault("detection.tokenizer.min_words", 20)

	// -- Enhancement --
	v.SetDefault("enhancement.authenticity_tolerance", 2.0)
	v.SetDefault("enhancement.machine_tolerance", 2.0)
	v.SetDefault("enhancement.max_injections", 2)

	// -- Composer --
	v.SetDefault("composer.imperfection_threshold", 3)
	v.SetDefault("composer.content_types", []string{})

	// -- LLM --
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.rps", 1.0)
	v.SetDefault("llm.burst", 2)

	v.SetDefault("personas_file", "personas.yaml")
	v.SetDefault("database_url", "")
}

// Load reads configuration from path (optional), environment overrides and defaults.
// An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return NewConfigFromViper(v)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Sensitive values come from their conventional variables
	_ = v.BindEnv("llm.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Message: "error unmarshaling config", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. Every violation is a *Error.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return &Error{Field: "thresholds", Message: "invalid thresholds", Cause: err}
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := c.Detection.Validate(); err != nil {
		return err
	}
	if err := c.Enhancement.Validate(); err != nil {
		return err
	}
	if c.Composer.ImperfectionThreshold < 2 {
		return Errorf("composer.imperfection_threshold", "must be at least 2")
	}
	if c.LLM.RPS <= 0 {
		return Errorf("llm.rps", "must be positive")
	}
	if c.LLM.Burst < 1 {
		return Errorf("llm.burst", "must be at least 1")
	}
	return nil
}

// Validate checks the pipeline bounds.
func (p *PipelineConfig) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return Errorf("pipeline.max_attempts", "must be a positive integer")
	case p.MaxTransientRetries < 0:
		return Errorf("pipeline.max_transient_retries", "must be non-negative")
	case p.BackoffBase <= 0:
		return Errorf("pipeline.backoff_base", "must be positive")
	case p.BackoffMax < p.BackoffBase:
		return Errorf("pipeline.backoff_max", "must not be below backoff_base")
	case p.GenerationTimeout <= 0:
		return Errorf("pipeline.generation_timeout", "must be positive")
	case p.Concurrency < 1:
		return Errorf("pipeline.concurrency", "must be a positive integer")
	}
	return nil
}

// Validate checks the scoring constants.
func (s *ScoringConfig) Validate() error {
	percent := []struct {
		field string
		val   float64
	}{
		{"scoring.language_mismatch_penalty", s.LanguageMismatchPenalty},
		{"scoring.hard_failure_ceiling", s.HardFailureCeiling},
		{"scoring.undetermined_language_score", s.UndeterminedLanguageScore},
		{"scoring.artifact_penalty_cap", s.ArtifactPenaltyCap},
		{"scoring.pattern_baseline", s.PatternBaseline},
		{"scoring.signature_reward_cap", s.SignatureRewardCap},
		{"scoring.forbidden_penalty_cap", s.ForbiddenPenaltyCap},
	}
	for _, p := range percent {
		if p.val < 0 || p.val > 100 {
			return Errorf(p.field, "must be within [0,100], got %v", p.val)
		}
	}
	if s.ArtifactPenalty < 0 || s.SignatureReward < 0 || s.ForbiddenPenalty < 0 {
		return Errorf("scoring", "per-match penalties and rewards must be non-negative")
	}
	if s.Weights.Language <= 0 || s.Weights.Artifact <= 0 || s.Weights.Pattern <= 0 {
		return Errorf("scoring.weights", "weights must be positive")
	}
	if s.LanguageMinHits < 1 {
		return Errorf("scoring.language_min_hits", "must be at least 1")
	}
	if s.PersonaCacheSize < 1 {
		return Errorf("scoring.persona_cache_size", "must be at least 1")
	}
	return nil
}

// Validate checks the detector list and tables. The pattern detector is mandatory.
func (d *DetectionConfig) Validate() error {
	seen := make(map[string]bool, len(d.Detectors))
	for i, det := range d.Detectors {
		field := fmt.Sprintf("detection.detectors[%d]", i)
		switch det.ID {
		case DetectorPattern, DetectorBurstiness, DetectorTokenizer:
		default:
			return Errorf(field, "unknown detector id %q", det.ID)
		}
		if seen[det.ID] {
			return Errorf(field, "duplicate detector id %q", det.ID)
		}
		seen[det.ID] = true
		if det.Weight <= 0 {
			return Errorf(field, "weight must be positive")
		}
	}
	if !seen[DetectorPattern] {
		return Errorf("detection.detectors", "the %q detector is required", DetectorPattern)
	}
	if len(d.Pattern.Phrases) == 0 && len(d.Pattern.Constructions) == 0 {
		return Errorf("detection.pattern", "at least one phrase or construction is required")
	}
	for i, expr := range d.Pattern.Constructions {
		if _, err := regexp.Compile(expr); err != nil {
			return &Error{Field: fmt.Sprintf("detection.pattern.constructions[%d]", i), Message: "invalid expression", Cause: err}
		}
	}
	if d.Pattern.DensityScale <= 0 {
		return Errorf("detection.pattern.density_scale", "must be positive")
	}
	if d.Burstiness.LowCV >= d.Burstiness.HighCV {
		return Errorf("detection.burstiness", "low_cv must be below high_cv")
	}
	if d.Tokenizer.LowRatio >= d.Tokenizer.HighRatio {
		return Errorf("detection.tokenizer", "low_ratio must be below high_ratio")
	}
	return nil
}

// Validate checks the tolerances.
func (e *EnhancementConfig) Validate() error {
	if e.AuthenticityTolerance < 0 {
		return Errorf("enhancement.authenticity_tolerance", "must be non-negative")
	}
	if e.MachineTolerance < 0 {
		return Errorf("enhancement.machine_tolerance", "must be non-negative")
	}
	if e.MaxInjections < 0 {
		return Errorf("enhancement.max_injections", "must be non-negative")
	}
	return nil
}

// DetectorWeight returns the configured weight of a detector, or 0 when it is not enabled
func (d *DetectionConfig) DetectorWeight(id string) float64 {
	for _, det := range d.Detectors {
		if det.ID == id {
			return det.Weight
		}
	}
	return 0
}
