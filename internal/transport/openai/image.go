package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain"
)

// ImageEmbedder embeds images through a CLIP-style OpenAI-compatible
// endpoint. Servers like Infinity accept image URLs or data URIs as plain
// embedding inputs, so the wire format is identical to text embedding.
type ImageEmbedder struct {
	client   *openai.Client
	model    openai.EmbeddingModel
	user     string
	provider string
	logger   *zap.Logger
}

// NewImageEmbedder creates an OpenAI-compatible image embedding provider.
// Dimensions is ignored: CLIP models have a fixed output size.
func NewImageEmbedder(cfg *Config) *ImageEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &ImageEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    openai.EmbeddingModel(cfg.Model),
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// EmbedImage implements domain.ImageEmbedder. The image argument is a URL
// or data URI understood by the provider.
func (e *ImageEmbedder) EmbedImage(ctx context.Context, image string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{image},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}

	return embedOne(ctx, e.client, req, e.provider)
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *ImageEmbedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
