package rank

import (
	"context"

	"github.com/studylens/fuserank/internal/domain/candidate"
)

// Reranker is an optional second scoring pass (typically a cross-encoder)
// applied after similarity-based sorting and truncation. Implementations
// return results sorted by the new score, descending. On error callers fall
// back to the pre-rerank order.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []candidate.Ranked) ([]candidate.Ranked, error)
}
