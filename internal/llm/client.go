// Package llm provides the text-generation client used by the pipeline.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// Generator produces candidate text for a prompt. Every failure is a *GenerationError.
type Generator interface {
	Generate(ctx context.Context, spec types.PromptSpec, timeout time.Duration) (string, error)
}

// GeminiClient implements Generator for Google Gemini
type GeminiClient struct {
	client  *genai.Client
	cfg     config.LLMConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGeminiClient creates a new Gemini client. Requests are paced by a token bucket of
// cfg.RPS requests per second with cfg.Burst headroom.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, config.Errorf("llm.api_key", "API key is required (set GEMINI_API_KEY)")
	}
	if cfg.Model == "" {
		return nil, config.Errorf("llm.model", "model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		cfg:     cfg,
		limiter: newLimiter(cfg),
		logger:  logger,
	}, nil
}

func newLimiter(cfg config.LLMConfig) *rate.Limiter {
	burst := max(cfg.Burst, 1)
	if cfg.RPS <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(cfg.RPS), burst)
}

// Generate sends the prompt and returns the raw response text. The timeout covers both the
// wait for a rate-limiter token and the call itself.
func (c *GeminiClient) Generate(ctx context.Context, spec types.PromptSpec, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Wait fails early when the deadline cannot accommodate the next token
		return "", &GenerationError{Kind: KindTimeout, Message: "waiting for rate limiter", Cause: err}
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(spec.Text))
	if err != nil {
		genErr := Classify(err, "failed to generate content")
		c.logger.Debug("generation failed",
			zap.String("persona", spec.PersonaID),
			zap.Int("attempt", spec.Attempt),
			zap.String("kind", string(genErr.Kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", genErr
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &GenerationError{Kind: KindServiceError, Message: "unusable response", Cause: err}
	}

	c.logger.Debug("generation succeeded",
		zap.String("persona", spec.PersonaID),
		zap.Int("attempt", spec.Attempt),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response (finish reason %s)", candidate.FinishReason)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text in response")
	}
	return text, nil
}
