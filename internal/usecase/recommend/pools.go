package recommend

import (
	"context"
	"fmt"

	"github.com/studylens/fuserank/internal/domain/candidate"
)

// VectorSearcher finds nearest items in one collection.
type VectorSearcher interface {
	SearchKNN(ctx context.Context, collection string, vec []float32, topK int) ([]candidate.Candidate, error)
}

// RecentLoader returns the user's last fused query vector, ok=false when the
// user has no recent activity.
type RecentLoader interface {
	Load(ctx context.Context, userID string) ([]float32, bool, error)
}

// NewSimilarToRecentGenerator builds a pool of items near the user's most
// recent query vector, drawn from one collection. Users without recent
// activity get an empty pool, not an error.
func NewSimilarToRecentGenerator(
	name, collection string, recent RecentLoader, searcher VectorSearcher,
) *GeneratorFunc {
	return NewGenerator(name, func(ctx context.Context, userID string, limit int) ([]candidate.Candidate, error) {
		vec, ok, err := recent.Load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load recent vector: %w", err)
		}
		if !ok {
			return nil, nil
		}

		pool, err := searcher.SearchKNN(ctx, collection, vec, limit)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", collection, err)
		}
		return pool, nil
	})
}
