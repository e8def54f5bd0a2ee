package fuserank

import "context"

// EmbeddingResult carries an embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implementations wrap whatever provider the
// host application already talks to.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// ImageEmbedder vectorizes a single image supplied as a data URI or URL.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image string) (EmbeddingResult, error)
}

// Item is the ingest payload for one context item.
type Item struct {
	Content  string
	Images   []string
	Tags     map[string]string
	Numerics map[string]float64
}

// RankedResult is one entry of a ranked context or recommendation list.
type RankedResult struct {
	ID         string
	Content    string
	Source     string
	Similarity float64
	Tags       map[string]string
	Numerics   map[string]float64
}

// FusionResult is the outcome of fusing modality vectors.
type FusionResult struct {
	Hybrid  []float32
	Text    []float32
	Image   []float32
	Method  string
	Success bool
	Error   string
}

// SearchOptions configures a context search.
type SearchOptions struct {
	UserID   string
	Images   []string
	TopK     int
	MinScore float64
}
