package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/persona-authenticity/internal/authenticity"
	"github.com/jonathan/persona-authenticity/internal/composer"
	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/db"
	"github.com/jonathan/persona-authenticity/internal/detection"
	"github.com/jonathan/persona-authenticity/internal/llm"
	"github.com/jonathan/persona-authenticity/internal/observability"
	"github.com/jonathan/persona-authenticity/internal/persona"
	"github.com/jonathan/persona-authenticity/internal/pipeline"
	"github.com/jonathan/persona-authenticity/internal/types"
	"github.com/jonathan/persona-authenticity/internal/voice"
)

const serviceName = "authenticity-agent"

// app holds the components shared by every subcommand
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	printer  *observability.Printer
	personas *persona.Store
	scorer   *authenticity.Scorer
	ensemble *detection.Ensemble

	generator    *llm.GeminiClient
	orchestrator *pipeline.Orchestrator
	db           *db.DB

	tracer  *observability.TracerProvider
	metrics *http.Server
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("personas") {
		cfg.PersonasFile = flagPersonasFile
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("log-level") {
		cfg.Logger.Level = flagLogLevel
	}
	return cfg, nil
}

// newApp builds the scoring stack. withPipeline additionally connects the generation client
// and builds the orchestrator; withDB connects the result store when a URL is configured.
func newApp(ctx context.Context, cmd *cobra.Command, withPipeline, withDB bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	observability.InitializeLogger(cfg.Logger)
	a := &app{
		cfg:     cfg,
		logger:  observability.GetLogger(),
		printer: observability.NewPrinter(os.Stdout),
	}

	if flagTrace {
		a.tracer, err = observability.NewTracerProvider(serviceName, os.Stderr)
		if err != nil {
			return nil, err
		}
	}
	if flagMetricsAddr != "" {
		a.serveMetrics(flagMetricsAddr)
	}

	a.personas, err = persona.LoadFile(cfg.PersonasFile)
	if err != nil {
		a.close()
		return nil, err
	}
	a.logger.Debug("personas loaded", zap.String("file", cfg.PersonasFile), zap.Int("count", a.personas.Len()))

	a.scorer, err = authenticity.NewScorer(cfg.Scoring)
	if err != nil {
		a.close()
		return nil, err
	}
	a.ensemble, err = detection.NewEnsembleFromConfig(cfg.Detection, a.logger)
	if err != nil {
		a.close()
		return nil, err
	}

	if withPipeline {
		if err := a.buildPipeline(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	if withDB && cfg.DatabaseURL != "" {
		a.db, err = db.Connect(ctx, cfg.DatabaseURL, a.logger)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := a.db.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) buildPipeline(ctx context.Context) error {
	enhancer, err := voice.NewEnhancer(a.cfg.Enhancement, a.scorer, a.ensemble, a.logger)
	if err != nil {
		return err
	}
	comp, err := composer.New(a.cfg.Composer, a.logger)
	if err != nil {
		return err
	}
	a.generator, err = llm.NewGeminiClient(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(a.logger)}
	if flagVerbose && !flagJSON {
		opts = append(opts, pipeline.WithProgress(a.printProgress))
	}

	a.orchestrator, err = pipeline.New(a.cfg.Pipeline, a.cfg.Thresholds, pipeline.Dependencies{
		Personas:     a.personas,
		Composer:     comp,
		Generator:    a.generator,
		Authenticity: a.scorer,
		Detector:     a.ensemble,
		Enhancer:     enhancer,
	}, opts...)
	return err
}

// printProgress renders each decided attempt in verbose mode
func (a *app) printProgress(e pipeline.ProgressEvent) {
	if attempt, ok := e.Content.(types.Attempt); ok {
		a.printer.PrintAttempt(&attempt)
	}
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", addr))
}

// saveResult persists a finished run when a database is configured. Failures are logged;
// the run itself already succeeded.
func (a *app) saveResult(ctx context.Context, res *types.Result) {
	if a.db == nil || res == nil {
		return
	}
	if err := a.db.SaveResult(ctx, res); err != nil {
		a.logger.Error("failed to save result", zap.String("run_id", res.RunID), zap.Error(err))
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.generator != nil {
		_ = a.generator.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.metrics != nil {
		_ = a.metrics.Shutdown(ctx)
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", zap.Error(err))
	}
}

// requireDB returns an error when no database URL is configured
func (a *app) requireDB() error {
	if a.db == nil {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return nil
}
