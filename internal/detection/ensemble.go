// Package detection estimates how machine-generated a text looks by combining one mandatory
// pattern detector with optional statistical models.
package detection

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// Capabilities is the set of detectors that produced a score for one text.
type Capabilities map[string]bool

// Has reports whether a detector ran
func (c Capabilities) Has(id string) bool { return c[id] }

// HasModel reports whether any detector other than the pattern detector ran
func (c Capabilities) HasModel() bool {
	for id, ok := range c {
		if ok && id != config.DetectorPattern {
			return true
		}
	}
	return false
}

type weightedModel struct {
	model  Model
	weight float64
}

// Ensemble runs the pattern detector and every configured model over a text and combines
// their scores. It keeps no per-call state and is safe for concurrent use.
type Ensemble struct {
	pattern       *PatternDetector
	patternWeight float64
	models        []weightedModel
	logger        *zap.Logger
}

// Option configures an Ensemble
type Option func(*Ensemble)

// WithModel adds an optional model with its weight
func WithModel(m Model, weight float64) Option {
	return func(e *Ensemble) {
		e.models = append(e.models, weightedModel{model: m, weight: weight})
	}
}

// WithLogger sets the logger used to report skipped models
func WithLogger(l *zap.Logger) Option {
	return func(e *Ensemble) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnsemble creates an ensemble around the mandatory pattern detector.
func NewEnsemble(pattern *PatternDetector, patternWeight float64, opts ...Option) (*Ensemble, error) {
	if pattern == nil {
		return nil, config.Errorf("detection.detectors", "the pattern detector is required")
	}
	if patternWeight <= 0 {
		return nil, config.Errorf("detection.detectors", "pattern weight must be positive")
	}
	e := &Ensemble{pattern: pattern, patternWeight: patternWeight, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	for _, m := range e.models {
		if m.weight <= 0 {
			return nil, config.Errorf("detection.detectors", "weight of %q must be positive", m.model.ID())
		}
	}
	return e, nil
}

// NewEnsembleFromConfig resolves detector ids into typed detectors. Unknown ids were already
// rejected by config validation; anything else reaching here is a programming error.
func NewEnsembleFromConfig(cfg config.DetectionConfig, logger *zap.Logger) (*Ensemble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pattern, err := NewPatternDetector(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []Option{WithLogger(logger)}
	for _, d := range cfg.Detectors {
		switch d.ID {
		case config.DetectorPattern:
		case config.DetectorBurstiness:
			opts = append(opts, WithModel(NewBurstinessModel(cfg.Burstiness), d.Weight))
		case config.DetectorTokenizer:
			m := NewTokenizerModel(cfg.Tokenizer)
			if err := m.Load(); err != nil {
				logger.Warn("tokenizer detector unavailable", zap.String("encoding", cfg.Tokenizer.Encoding), zap.Error(err))
			}
			opts = append(opts, WithModel(m, d.Weight))
		default:
			return nil, config.Errorf("detection.detectors", "unknown detector id %q", d.ID)
		}
	}
	return NewEnsemble(pattern, cfg.DetectorWeight(config.DetectorPattern), opts...)
}

// Detect scores text. The composite is the weighted mean of the detectors that ran, with
// weights renormalized over those detectors only. A model error means "not run"; it never
// contributes a default score. The report is partial when the pattern detector was the only
// one that ran; a model skipped while another model ran is listed in Skipped only.
func (e *Ensemble) Detect(text string) (types.DetectionReport, error) {
	var report types.DetectionReport
	caps := Capabilities{}

	p := e.pattern.Detect(text)
	p.Weight = e.patternWeight
	report.Detectors = append(report.Detectors, p)
	caps[p.Detector] = true

	for _, wm := range e.models {
		id := wm.model.ID()
		score, err := wm.model.Score(text)
		if err == nil && (math.IsNaN(score) || score < 0 || score > 100) {
			err = fmt.Errorf("score %v outside [0,100]", score)
		}
		if err != nil {
			reason := err.Error()
			if !errors.Is(err, ErrUnavailable) {
				reason = "error: " + reason
			}
			e.logger.Debug("detector skipped", zap.String("detector", id), zap.String("reason", reason))
			report.Skipped = append(report.Skipped, types.SkippedDetector{Detector: id, Reason: reason})
			continue
		}
		report.Detectors = append(report.Detectors, types.DetectorScore{Detector: id, Score: score, Weight: wm.weight})
		caps[id] = true
	}

	if len(report.Detectors) == 0 {
		skipped := make([]string, 0, len(report.Skipped))
		for _, s := range report.Skipped {
			skipped = append(skipped, s.Detector)
		}
		return types.DetectionReport{}, &NoDetectorsError{Skipped: skipped}
	}

	var sum, weights float64
	for _, d := range report.Detectors {
		sum += d.Score * d.Weight
		weights += d.Weight
	}
	report.Score = math.Round(math.Max(0, math.Min(100, sum/weights))*100) / 100
	report.Partial = !caps.HasModel()

	return report, nil
}
