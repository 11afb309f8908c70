package embed

import (
	"context"
	"fmt"

	"github.com/lavoz-media/centralita/internal/config"
)

// Provider turns text into a fixed-length embedding vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NewProvider builds the configured embedding provider.
func NewProvider(cfg config.Config) (Provider, error) {
	switch cfg.EmbeddingProvider {
	case "remote":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	case "local":
		return NewOllamaProvider(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
