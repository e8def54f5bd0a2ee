package fusion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	"github.com/studylens/fuserank/internal/domain/vector"
	"github.com/studylens/fuserank/internal/metrics"
)

// Service fuses per-modality vectors into one hybrid vector per item.
// The vector path (Fuse) is pure; FuseContent adds the embedding calls.
type Service struct {
	defaults domfusion.Config
	text     Embedder
	image    ImageEmbedder
	logger   *zap.Logger
}

// New creates a fusion service with the given default config.
func New(defaults domfusion.Config, logger *zap.Logger) *Service {
	return &Service{defaults: defaults, logger: logger}
}

// WithEmbedders attaches the embedding providers used by FuseContent.
func (s *Service) WithEmbedders(text Embedder, image ImageEmbedder) *Service {
	s.text = text
	s.image = image
	return s
}

// Defaults returns the configured default fusion parameters.
func (s *Service) Defaults() domfusion.Config { return s.defaults }

// Fuse combines a text vector and zero-or-more image vectors under cfg.
// It never returns an error: malformed upstream input (NaN/Inf components,
// unknown method) yields a HybridResult with Success=false and zero vectors
// of the expected dimensions, because a hard failure is worse than a low
// score in a best-effort relevance pipeline.
func (s *Service) Fuse(text []float32, images [][]float32, cfg domfusion.Config) domfusion.HybridResult {
	start := time.Now()

	strategy, err := strategyFor(cfg)
	if err != nil {
		return s.failure(cfg, len(text), err.Error())
	}

	if !vector.IsFinite(text) {
		return s.failure(cfg, len(text), "text vector has non-finite components")
	}
	for i, img := range images {
		if !vector.IsFinite(img) {
			return s.failure(cfg, len(text), fmt.Sprintf("image vector %d has non-finite components", i))
		}
	}

	img := s.collapseImages(images, cfg.ImageDim)
	hybrid := strategy.Fuse(text, img)

	metrics.FusionOpsTotal.WithLabelValues(string(cfg.Method), "success").Inc()
	metrics.FusionDuration.WithLabelValues(string(cfg.Method)).Observe(time.Since(start).Seconds())

	return domfusion.HybridResult{
		Hybrid:  hybrid,
		Text:    text,
		Image:   img,
		Method:  cfg.Method,
		Success: true,
	}
}

// FuseContent embeds raw text and image payloads, then fuses the resulting
// vectors under the service defaults. Embedding failures propagate as
// errors; only vector-shape problems surface through HybridResult.
func (s *Service) FuseContent(ctx context.Context, text string, images []string) (domfusion.HybridResult, error) {
	if s.text == nil {
		return domfusion.HybridResult{}, fmt.Errorf("no text embedder configured")
	}

	textRes, err := s.text.Embed(ctx, text)
	if err != nil {
		return domfusion.HybridResult{}, fmt.Errorf("embed text: %w", err)
	}

	imageVecs := make([][]float32, 0, len(images))
	for i, img := range images {
		if s.image == nil {
			return domfusion.HybridResult{}, fmt.Errorf("no image embedder configured")
		}
		imgRes, err := s.image.EmbedImage(ctx, img)
		if err != nil {
			return domfusion.HybridResult{}, fmt.Errorf("embed image %d: %w", i, err)
		}
		imageVecs = append(imageVecs, imgRes.Embedding)
	}

	result := s.Fuse(textRes.Embedding, imageVecs, s.defaults)

	s.logger.Debug("Fused content",
		zap.String("method", string(s.defaults.Method)),
		zap.Int("text_dim", len(result.Text)),
		zap.Int("image_count", len(images)),
		zap.Int("hybrid_dim", len(result.Hybrid)),
		zap.Bool("success", result.Success),
	)

	return result, nil
}

// collapseImages reduces the image list to one representative vector:
// component-wise mean, then normalize. An empty list substitutes a zero
// vector of the configured image dimension (missing-modality fallback).
func (s *Service) collapseImages(images [][]float32, imageDim int) []float32 {
	if len(images) == 0 {
		return vector.Zero(imageDim)
	}
	return vector.Normalize(vector.Mean(images))
}

// failure builds the degraded result: zero vectors at the dimensions the
// caller would have received on success.
func (s *Service) failure(cfg domfusion.Config, textDim int, reason string) domfusion.HybridResult {
	hybridDim := max(textDim, cfg.ImageDim)
	if cfg.Method == domfusion.Concatenation {
		hybridDim = textDim + cfg.ImageDim
	}

	metrics.FusionOpsTotal.WithLabelValues(string(cfg.Method), "error").Inc()
	s.logger.Warn("Fusion failed",
		zap.String("method", string(cfg.Method)),
		zap.String("reason", reason),
	)

	return domfusion.HybridResult{
		Hybrid:  vector.Zero(hybridDim),
		Text:    vector.Zero(textDim),
		Image:   vector.Zero(cfg.ImageDim),
		Method:  cfg.Method,
		Success: false,
		Error:   reason,
	}
}
