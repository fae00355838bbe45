// Package embedding turns text into fixed-size vectors for similarity search.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookquery/bookquery/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// New builds the embedder selected by cfg.Embedding.Provider.
func New(cfg config.Config) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider)) {
	case ProviderHash:
		return NewHashEmbedder(cfg.Embedding.Dimensions)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:    cfg.AI.BaseURL,
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    cfg.AI.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}
}
