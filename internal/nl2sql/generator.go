package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookquery/bookquery/internal/observability"
	"github.com/bookquery/bookquery/internal/prompt"
)

type GeneratorConfig struct {
	SystemPrompt string
	ReadOnly     bool
}

// Generator runs retrieve, render, complete and extract once per question.
// Nothing is retried.
type Generator struct {
	selector     ExampleSelector
	model        ChatModel
	systemPrompt string
	readOnly     bool
	logger       *slog.Logger
}

func NewGenerator(selector ExampleSelector, model ChatModel, cfg GeneratorConfig, logger *slog.Logger) (*Generator, error) {
	if selector == nil {
		return nil, fmt.Errorf("example selector is required")
	}
	if model == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Generator{
		selector:     selector,
		model:        model,
		systemPrompt: systemPrompt,
		readOnly:     cfg.ReadOnly,
		logger:       observability.LoggerOrDiscard(logger),
	}, nil
}

func (g *Generator) Translate(ctx context.Context, req Request) (Result, error) {
	return g.Generate(ctx, req.Question)
}

func (g *Generator) Generate(ctx context.Context, question string) (Result, error) {
	started := time.Now()
	if strings.TrimSpace(question) == "" {
		return Result{}, fmt.Errorf("%w: question is required", ErrGeneration)
	}

	examples, err := g.selector.Select(ctx, question)
	if err != nil {
		g.finish(ctx, observability.OutcomeRetrieval, 0, started, err)
		return Result{}, fmt.Errorf("%w: select examples: %w", ErrGeneration, err)
	}

	rendered := prompt.Render(examples, question)
	reply, err := g.model.Complete(ctx, g.systemPrompt, rendered)
	if err != nil {
		g.finish(ctx, observability.OutcomeModelError, len(examples), started, err)
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	sql, err := ExtractSQL(reply)
	if err != nil {
		g.finish(ctx, observability.OutcomeNoSQL, len(examples), started, err)
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if g.readOnly && !isReadOnlySQL(sql) {
		g.finish(ctx, observability.OutcomeRejected, len(examples), started, ErrNotReadOnly)
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, ErrNotReadOnly)
	}

	g.finish(ctx, observability.OutcomeSuccess, len(examples), started, nil)
	return Result{
		SQL:      sql,
		Provider: "openai-compatible",
		Model:    g.model.Name(),
		Examples: examples,
		Prompt:   rendered,
	}, nil
}

func (g *Generator) finish(ctx context.Context, outcome string, examples int, started time.Time, err error) {
	elapsed := time.Since(started)
	if errors.Is(err, context.Canceled) {
		outcome = observability.OutcomeCanceled
	}
	observability.ObserveGeneration(outcome, examples, elapsed)

	attrs := append(observability.RequestAttrs(ctx),
		"outcome", outcome,
		"model", g.model.Name(),
		"examples", examples,
		"duration_ms", elapsed.Milliseconds(),
	)
	switch {
	case err == nil:
		g.logger.InfoContext(ctx, "sql generated", attrs...)
	case outcome == observability.OutcomeCanceled:
		g.logger.InfoContext(ctx, "sql generation canceled", attrs...)
	default:
		g.logger.WarnContext(ctx, "sql generation failed", append(attrs, "error", err.Error())...)
	}
}
