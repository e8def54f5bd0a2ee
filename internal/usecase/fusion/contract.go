package fusion

import (
	"context"

	"github.com/studylens/fuserank/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEmbedder vectorizes images supplied as data URIs or URLs.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image string) (domain.EmbeddingResult, error)
}
