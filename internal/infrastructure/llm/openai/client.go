// Package openai adapts an OpenAI-compatible chat completion API as the
// document classification service.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/resilience"
)

type Options struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	RatePerMinute  int
	MaxPromptChars int
	Executor       *resilience.Executor
}

type Classifier struct {
	api            *openai.Client
	model          string
	timeout        time.Duration
	maxPromptChars int
	limiter        *rate.Limiter
	executor       *resilience.Executor
}

func NewClassifier(opts Options) *Classifier {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxPromptChars := opts.MaxPromptChars
	if maxPromptChars <= 0 {
		maxPromptChars = 8000
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), 1)
	}

	executor := opts.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	return &Classifier{
		api:            openai.NewClientWithConfig(cfg),
		model:          opts.Model,
		timeout:        timeout,
		maxPromptChars: maxPromptChars,
		limiter:        limiter,
		executor:       executor,
	}
}

// Classify submits a bounded prefix of text plus the current category set
// and returns the schema-validated triple. Transient failures, including
// schema violations, are retried by the executor; exhaustion escalates to
// domain.ErrClassification carrying the last underlying cause.
func (c *Classifier) Classify(ctx context.Context, text, originalName string, knownCategories []string) (domain.ClassificationResult, error) {
	snippet := domain.TruncateRunes(text, c.maxPromptChars)
	userPrompt := buildUserPrompt(snippet, originalName)
	systemPrompt := buildSystemPrompt(knownCategories)

	var result domain.ClassificationResult
	err := c.executor.Execute(ctx, "classify", func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.1,
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return domain.WrapError(domain.ErrSchemaViolation, "classify", fmt.Errorf("completion returned no choices"))
		}

		parsed, err := parseClassification(resp.Choices[0].Message.Content)
		if err != nil {
			return err
		}
		result = parsed
		return nil
	}, classifyServiceError)
	if err != nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrClassification, "classify", err)
	}
	return result, nil
}
