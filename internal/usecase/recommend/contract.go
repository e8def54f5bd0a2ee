package recommend

import (
	"context"
	"time"

	"github.com/studylens/fuserank/internal/domain/candidate"
)

// Generator produces one named recommendation pool for a user. Each
// generator embodies one heuristic (knowledge-gap, similar-to-recent,
// trending, spaced-repetition) and returns candidates already ranked by
// that heuristic's own score.
type Generator interface {
	Name() string
	Generate(ctx context.Context, userID string, limit int) ([]candidate.Candidate, error)
}

// Cache is the TTL key-value contract for caching composed lists.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc struct {
	name string
	fn   func(ctx context.Context, userID string, limit int) ([]candidate.Candidate, error)
}

// NewGenerator wraps a pool function as a named Generator.
func NewGenerator(
	name string,
	fn func(ctx context.Context, userID string, limit int) ([]candidate.Candidate, error),
) *GeneratorFunc {
	return &GeneratorFunc{name: name, fn: fn}
}

// Name returns the pool name.
func (g *GeneratorFunc) Name() string { return g.name }

// Generate delegates to the wrapped function.
func (g *GeneratorFunc) Generate(
	ctx context.Context, userID string, limit int,
) ([]candidate.Candidate, error) {
	return g.fn(ctx, userID, limit)
}
