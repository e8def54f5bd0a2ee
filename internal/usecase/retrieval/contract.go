package retrieval

import (
	"context"

	"github.com/studylens/fuserank/internal/domain/candidate"
	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
)

// Repository defines the vector-store contract for candidate search.
type Repository interface {
	SearchKNN(ctx context.Context, collection string, vec []float32, topK int) ([]candidate.Candidate, error)
}

// Fuser embeds raw query content and fuses it into one hybrid vector.
type Fuser interface {
	FuseContent(ctx context.Context, text string, images []string) (domfusion.HybridResult, error)
}

// RecentRecorder remembers the user's last fused query vector.
type RecentRecorder interface {
	Save(ctx context.Context, userID string, vec []float32) error
}
