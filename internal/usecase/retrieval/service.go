// Package retrieval orchestrates the query side: embed, fuse, fan out KNN
// searches across collections, aggregate and score confidence.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain/candidate"
	"github.com/studylens/fuserank/internal/metrics"
	"github.com/studylens/fuserank/internal/usecase/rank"
)

// Service answers context-retrieval queries over one or more collections.
type Service struct {
	repo        Repository
	fuser       Fuser
	aggregator  *rank.Aggregator
	collections []string
	topK        int
	minScore    float64
	recent      RecentRecorder
	logger      *zap.Logger
}

// New creates a retrieval service searching the given collections.
func New(
	repo Repository, fuser Fuser, aggregator *rank.Aggregator,
	collections []string, logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		fuser:       fuser,
		aggregator:  aggregator,
		collections: collections,
		topK:        10,
		logger:      logger,
	}
}

// WithDefaults configures the fallback top-k and score threshold used when
// the request leaves them unset.
func (s *Service) WithDefaults(topK int, minScore float64) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if minScore > 0 {
		s.minScore = minScore
	}
	return s
}

// WithRecentRecorder attaches best-effort recent-query tracking.
func (s *Service) WithRecentRecorder(r RecentRecorder) *Service {
	s.recent = r
	return s
}

// Search embeds and fuses the query, collects candidates from every
// configured collection, and returns the aggregated ranked context with its
// confidence score. A degraded fusion (zero hybrid vector) yields an empty
// result with zero confidence rather than an error.
func (s *Service) Search(
	ctx context.Context, userID, query string, images []string,
	topK int, minScore float64,
) ([]candidate.Ranked, float64, error) {
	if topK <= 0 {
		topK = s.topK
	}
	if minScore <= 0 {
		minScore = s.minScore
	}

	fused, err := s.fuser.FuseContent(ctx, query, images)
	if err != nil {
		return nil, 0, fmt.Errorf("fuse query: %w", err)
	}
	if !fused.Success {
		s.logger.Warn("Query fusion degraded, returning empty context",
			zap.String("reason", fused.Error),
		)
		return nil, 0, nil
	}

	lists := make([][]candidate.Candidate, 0, len(s.collections))
	for _, collection := range s.collections {
		cands, err := s.repo.SearchKNN(ctx, collection, fused.Hybrid, topK)
		if err != nil {
			return nil, 0, fmt.Errorf("search %s: %w", collection, err)
		}
		lists = append(lists, cands)
	}

	results := s.aggregator.Aggregate(ctx, query, lists, topK, minScore)
	confidence := rank.Confidence(results)
	metrics.RetrievalConfidence.Observe(confidence)

	s.recordRecent(ctx, userID, fused.Hybrid)

	s.logger.Debug("Context retrieved",
		zap.Int("collections", len(s.collections)),
		zap.Int("results", len(results)),
		zap.Float64("confidence", confidence),
	)

	return results, confidence, nil
}

// recordRecent is best-effort: losing a recent-vector write degrades the
// similar-to-recent pool, never the search itself.
func (s *Service) recordRecent(ctx context.Context, userID string, vec []float32) {
	if s.recent == nil || userID == "" {
		return
	}
	if err := s.recent.Save(ctx, userID, vec); err != nil {
		s.logger.Warn("Recent vector save failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
