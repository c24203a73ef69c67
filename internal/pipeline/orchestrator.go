// Package pipeline drives the generate-score-decide loop that turns a GenerationRequest into
// an accepted text or an exhausted result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/llm"
	"github.com/jonathan/persona-authenticity/internal/observability"
	"github.com/jonathan/persona-authenticity/internal/readability"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
	"github.com/jonathan/persona-authenticity/internal/voice"
)

// State names a step of the pipeline state machine
type State string

// Pipeline states
const (
	StateComposing    State = "composing"
	StateGenerating   State = "generating"
	StateScoring      State = "scoring"
	StateDeciding     State = "deciding"
	StateEnhancing    State = "enhancing"
	StateRegenerating State = "regenerating"
	StateAccepted     State = "accepted"
	StateExhausted    State = "exhausted"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	RunID   string `json:"run_id"`
	Attempt int    `json:"attempt"`
	State   State  `json:"state"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called on every state transition. It may be called from several
// goroutines when running a batch.
type ProgressCallback func(event ProgressEvent)

// PersonaSource resolves persona ids
type PersonaSource interface {
	Get(id string) (*types.PersonaProfile, error)
}

// PromptComposer builds the prompt for the next attempt
type PromptComposer interface {
	Compose(req types.GenerationRequest, persona *types.PersonaProfile, history []types.Attempt) (types.PromptSpec, error)
}

// AuthenticityScorer scores text against a persona
type AuthenticityScorer interface {
	Score(text string, p *types.PersonaProfile) types.AuthenticityReport
}

// Detector estimates machine likelihood
type Detector interface {
	Detect(text string) (types.DetectionReport, error)
}

// Enhancer transforms a failing candidate without regenerating it
type Enhancer interface {
	Enhance(text string, p *types.PersonaProfile, baseline types.ScoreReport) (voice.Result, error)
}

// ReadabilityFunc checks text against a readability band
type ReadabilityFunc func(text string, band types.ReadabilityBand) types.ReadabilityReport

// Dependencies are the collaborators an Orchestrator drives. Readability defaults to
// readability.Validate; everything else is required.
type Dependencies struct {
	Personas     PersonaSource
	Composer     PromptComposer
	Generator    llm.Generator
	Authenticity AuthenticityScorer
	Detector     Detector
	Readability  ReadabilityFunc
	Enhancer     Enhancer
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress sets the progress callback
func WithProgress(cb ProgressCallback) Option {
	return func(o *Orchestrator) { o.onProgress = cb }
}

// Orchestrator runs the bounded retry loop for one request at a time; Run may be called
// concurrently.
type Orchestrator struct {
	cfg        config.PipelineConfig
	thresholds types.Thresholds
	deps       Dependencies
	logger     *zap.Logger
	tracer     trace.Tracer
	onProgress ProgressCallback
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator. thresholds are the defaults for requests that carry none.
func New(cfg config.PipelineConfig, thresholds types.Thresholds, deps Dependencies, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, &config.Error{Field: "thresholds", Message: "invalid thresholds", Cause: err}
	}
	switch {
	case deps.Personas == nil:
		return nil, config.Errorf("pipeline", "persona source is required")
	case deps.Composer == nil:
		return nil, config.Errorf("pipeline", "prompt composer is required")
	case deps.Generator == nil:
		return nil, config.Errorf("pipeline", "generator is required")
	case deps.Authenticity == nil:
		return nil, config.Errorf("pipeline", "authenticity scorer is required")
	case deps.Detector == nil:
		return nil, config.Errorf("pipeline", "detector is required")
	case deps.Enhancer == nil:
		return nil, config.Errorf("pipeline", "enhancer is required")
	}
	if deps.Readability == nil {
		deps.Readability = readability.Validate
	}

	o := &Orchestrator{
		cfg:        cfg,
		thresholds: thresholds,
		deps:       deps,
		logger:     zap.NewNop(),
		tracer:     observability.Tracer(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// run is the state of one invocation
type run struct {
	id         string
	req        types.GenerationRequest
	persona    *types.PersonaProfile
	thresholds types.Thresholds
	history    []types.Attempt
	logger     *zap.Logger
}

// Run drives one request to a terminal Result.
//
// Only configuration errors (*config.Error) and *NonRetryableGenerationError are returned as
// errors; everything else ends in an Accepted or Exhausted result. Cancelling ctx stops the
// run after the attempt in progress; the generation call itself is not interrupted.
func (o *Orchestrator) Run(ctx context.Context, req types.GenerationRequest) (*types.Result, error) {
	r, err := o.prepare(req)
	if err != nil {
		o.logger.Error("invalid request", zap.String("persona", req.PersonaID), zap.Error(err))
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run_id", r.id),
		attribute.String("persona", r.persona.ID),
		attribute.String("content_type", req.ContentType),
	))
	defer span.End()

	r.logger.Info("run started", zap.Int("max_attempts", o.cfg.MaxAttempts))

	for n := 1; n <= o.cfg.MaxAttempts; n++ {
		attempt, err := o.attempt(ctx, r, n)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.Error("run aborted", zap.Int("attempt", n), zap.Error(err))
			observability.RecordResult(string(types.StatusExhausted), "aborted")
			return nil, err
		}
		r.history = append(r.history, attempt)

		switch attempt.Decision {
		case types.DecisionAccept:
			return o.accept(r, span), nil
		case types.DecisionFail:
			return o.exhaust(r, types.ReasonMaxAttempts, span), nil
		}

		if ctx.Err() != nil {
			return o.exhaust(r, types.ReasonCancelled, span), nil
		}
		o.transition(r, n, StateRegenerating, "regenerating with escalated prompt", nil)
	}

	// Decide returns Fail on the last attempt, so the loop never falls through
	return o.exhaust(r, types.ReasonMaxAttempts, span), nil
}

func (o *Orchestrator) prepare(req types.GenerationRequest) (*run, error) {
	if err := req.Validate(); err != nil {
		return nil, &config.Error{Field: "request", Message: "invalid generation request", Cause: err}
	}

	persona, err := o.deps.Personas.Get(req.PersonaID)
	if err != nil {
		return nil, &config.Error{Field: "persona_id", Message: "unknown persona", Cause: err}
	}

	thresholds := o.thresholds
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			return nil, &config.Error{Field: "thresholds", Message: "invalid request thresholds", Cause: err}
		}
		thresholds = *req.Thresholds
	}
	req.Thresholds = &thresholds

	id := uuid.NewString()
	return &run{
		id:         id,
		req:        req,
		persona:    persona,
		thresholds: thresholds,
		logger:     o.logger.With(zap.String("run_id", id), zap.String("persona", persona.ID)),
	}, nil
}

// attempt runs one Composing → Generating → Scoring → Deciding (→ Enhancing) cycle.
func (o *Orchestrator) attempt(ctx context.Context, r *run, n int) (types.Attempt, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "pipeline.attempt", trace.WithAttributes(attribute.Int("attempt", n)))
	defer span.End()

	a := types.Attempt{Number: n, Request: r.req}

	o.transition(r, n, StateComposing, "composing prompt", nil)
	spec, err := o.deps.Composer.Compose(r.req, r.persona, r.history)
	if err != nil {
		return a, err
	}
	a.Prompt = spec

	o.transition(r, n, StateGenerating, "calling generation service", nil)
	raw, retries, err := o.generate(ctx, r, spec)
	a.TransientRetries = retries
	if err != nil {
		var transient *TransientGenerationError
		if !errors.As(err, &transient) {
			return a, err
		}
		a.GenerationError = err.Error()
		a.Decision = Decide(nil, r.thresholds, false, n, o.cfg.MaxAttempts)
		o.decided(r, &a, start)
		return a, nil
	}

	text := textutil.NormalizeCandidate(raw)
	a.Candidate = &types.CandidateText{Text: text, Attempt: n}
	sig := textutil.Structure(text)
	a.Structure = &sig

	o.transition(r, n, StateScoring, "scoring candidate", nil)
	report, err := o.score(ctx, text, r)
	if err != nil {
		return a, &config.Error{Field: "detection", Message: "candidate could not be scored", Cause: err}
	}
	a.Report = &report
	observability.ObserveScores(report.Authenticity.Score, report.Detection.Score)

	o.transition(r, n, StateDeciding, "deciding", report)
	a.Decision = Decide(a.Report, r.thresholds, false, n, o.cfg.MaxAttempts)

	if a.Decision == types.DecisionEnhance {
		if err := o.enhance(r, &a); err != nil {
			return a, err
		}
	}

	o.decided(r, &a, start)
	return a, nil
}

// enhance runs the enhancer on a and re-decides. A rejected or no-op enhancement keeps the
// original candidate and report.
func (o *Orchestrator) enhance(r *run, a *types.Attempt) error {
	o.transition(r, a.Number, StateEnhancing, "enhancing candidate", nil)

	baseline := *a.Report
	res, err := o.deps.Enhancer.Enhance(a.Candidate.Text, r.persona, baseline)
	if err != nil {
		return &config.Error{Field: "detection", Message: "enhanced candidate could not be scored", Cause: err}
	}
	a.EnhancementTried = true

	switch {
	case res.Degraded:
		a.EnhancementDegraded = true
		observability.RecordEnhancement("rejected")
		r.logger.Warn("enhancement rejected, falling back to regenerate",
			zap.Int("attempt", a.Number), zap.Error(res.Reason))
	case res.Changed:
		observability.RecordEnhancement("applied")
		a.BaselineReport = &baseline
		enhanced := types.ScoreReport{
			Authenticity: res.Authenticity,
			Detection:    res.Detection,
			Readability:  o.deps.Readability(res.Text, r.thresholds.Readability),
		}
		enhanced.Pass = Passes(&enhanced, r.thresholds)
		a.Candidate = &types.CandidateText{Text: res.Text, Attempt: a.Number}
		a.Report = &enhanced
		sig := textutil.Structure(res.Text)
		a.Structure = &sig
	default:
		observability.RecordEnhancement("noop")
	}

	a.Decision = Decide(a.Report, r.thresholds, true, a.Number, o.cfg.MaxAttempts)
	return nil
}

// generate calls the generator, retrying timeouts and rate limits with exponential backoff.
// The call context ignores cancellation of ctx so an in-flight call always completes.
func (o *Orchestrator) generate(ctx context.Context, r *run, spec types.PromptSpec) (string, int, error) {
	base := context.WithoutCancel(ctx)

	for retry := 0; ; retry++ {
		callCtx, cancel := context.WithTimeout(base, o.cfg.GenerationTimeout)
		text, err := o.deps.Generator.Generate(callCtx, spec, o.cfg.GenerationTimeout)
		cancel()
		if err == nil {
			return text, retry, nil
		}

		genErr := llm.Classify(err, "generation call failed")
		observability.RecordGenerationError(string(genErr.Kind))

		if !genErr.Kind.Retryable() {
			return "", retry, &NonRetryableGenerationError{RunID: r.id, Attempt: spec.Attempt, Cause: genErr}
		}
		if retry >= o.cfg.MaxTransientRetries {
			r.logger.Info("transient retries exhausted", zap.Int("attempt", spec.Attempt), zap.Error(genErr))
			return "", retry, &TransientGenerationError{Attempt: spec.Attempt, Retries: retry, Cause: genErr}
		}

		delay := o.backoff(retry)
		r.logger.Debug("transient generation failure, retrying",
			zap.Int("attempt", spec.Attempt),
			zap.Int("retry", retry+1),
			zap.String("kind", string(genErr.Kind)),
			zap.Duration("backoff", delay),
		)
		if err := o.sleep(base, delay); err != nil {
			return "", retry, err
		}
	}
}

// backoff returns base * 2^retry, capped at BackoffMax.
func (o *Orchestrator) backoff(retry int) time.Duration {
	d := o.cfg.BackoffBase
	for i := 0; i < retry && d < o.cfg.BackoffMax; i++ {
		d *= 2
	}
	return min(d, o.cfg.BackoffMax)
}

// score runs the three independent scorers concurrently.
func (o *Orchestrator) score(ctx context.Context, text string, r *run) (types.ScoreReport, error) {
	_, span := o.tracer.Start(ctx, "pipeline.score")
	defer span.End()

	var report types.ScoreReport
	var g errgroup.Group
	g.Go(func() error {
		report.Authenticity = o.deps.Authenticity.Score(text, r.persona)
		return nil
	})
	g.Go(func() error {
		det, err := o.deps.Detector.Detect(text)
		if err != nil {
			return err
		}
		report.Detection = det
		return nil
	})
	g.Go(func() error {
		report.Readability = o.deps.Readability(text, r.thresholds.Readability)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return types.ScoreReport{}, err
	}

	report.Pass = Passes(&report, r.thresholds)
	span.SetAttributes(
		attribute.Float64("authenticity", report.Authenticity.Score),
		attribute.Float64("machine_likelihood", report.Detection.Score),
		attribute.Bool("readability_pass", report.Readability.Pass),
	)
	return report, nil
}

func (o *Orchestrator) decided(r *run, a *types.Attempt, start time.Time) {
	observability.RecordAttempt(string(a.Decision), time.Since(start).Seconds())

	fields := []zap.Field{zap.Int("attempt", a.Number), zap.String("decision", string(a.Decision))}
	if a.Report != nil {
		fields = append(fields,
			zap.Float64("authenticity", a.Report.Authenticity.Score),
			zap.Float64("machine_likelihood", a.Report.Detection.Score),
			zap.Bool("readability_pass", a.Report.Readability.Pass),
			zap.Strings("failed", a.Report.FailedAxes(r.thresholds)),
		)
	}
	if a.GenerationError != "" {
		fields = append(fields, zap.String("generation_error", a.GenerationError))
	}
	r.logger.Info("attempt decided", fields...)
	o.emit(r, a.Number, StateDeciding, fmt.Sprintf("attempt %d: %s", a.Number, a.Decision), *a)
}

func (o *Orchestrator) accept(r *run, span trace.Span) *types.Result {
	last := r.history[len(r.history)-1]
	res := &types.Result{
		Status:   types.StatusAccepted,
		RunID:    r.id,
		Text:     last.Candidate.Text,
		Report:   last.Report,
		Attempts: len(r.history),
		History:  r.history,
	}
	span.SetAttributes(attribute.String("status", string(res.Status)), attribute.Int("attempts", res.Attempts))
	observability.RecordResult(string(res.Status), "")
	r.logger.Info("run accepted", zap.Int("attempts", res.Attempts))
	o.transition(r, res.Attempts, StateAccepted, "accepted", res)
	return res
}

func (o *Orchestrator) exhaust(r *run, reason string, span trace.Span) *types.Result {
	res := &types.Result{
		Status:   types.StatusExhausted,
		RunID:    r.id,
		Attempts: len(r.history),
		Best:     BestAttempt(r.history),
		Reason:   reason,
		History:  r.history,
	}
	span.SetAttributes(
		attribute.String("status", string(res.Status)),
		attribute.String("reason", reason),
		attribute.Int("attempts", res.Attempts),
	)
	observability.RecordResult(string(res.Status), reason)
	r.logger.Info("run exhausted", zap.String("reason", reason), zap.Int("attempts", res.Attempts))
	o.transition(r, res.Attempts, StateExhausted, reason, res)
	return res
}

func (o *Orchestrator) transition(r *run, attempt int, state State, message string, content any) {
	r.logger.Debug("state transition", zap.Int("attempt", attempt), zap.String("state", string(state)))
	o.emit(r, attempt, state, message, content)
}

// emit calls the progress callback if configured
func (o *Orchestrator) emit(r *run, attempt int, state State, message string, content any) {
	if o.onProgress != nil {
		o.onProgress(ProgressEvent{
			RunID:   r.id,
			Attempt: attempt,
			State:   state,
			Message: message,
			Content: content,
		})
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
