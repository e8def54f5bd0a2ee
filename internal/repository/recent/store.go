// Package recent persists each user's last fused query vector, feeding the
// similar-to-recent recommendation pool.
package recent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studylens/fuserank/internal/db"
	"github.com/studylens/fuserank/internal/domain"
)

// kvStore is the consumer interface for recent-vector persistence (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store keeps one vector per user with a sliding TTL.
type Store struct {
	store kvStore
	ttl   time.Duration
}

// New creates a recent-vector store.
func New(s kvStore, ttl time.Duration) *Store {
	return &Store{store: s, ttl: ttl}
}

// Save records the user's last fused query vector.
func (s *Store) Save(ctx context.Context, userID string, vec []float32) error {
	if len(vec) == 0 {
		return nil
	}
	key := domain.RecentVectorKey(userID)
	if err := s.store.SetWithTTL(ctx, key, []byte(db.VectorToBytes(vec)), s.ttl); err != nil {
		return fmt.Errorf("save recent vector %s: %w", userID, err)
	}
	return nil
}

// Load returns the user's last fused query vector, or ok=false when the
// user has no recent activity.
func (s *Store) Load(ctx context.Context, userID string) ([]float32, bool, error) {
	data, err := s.store.Get(ctx, domain.RecentVectorKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load recent vector %s: %w", userID, err)
	}

	vec := db.VectorFromBytes(string(data))
	if vec == nil {
		return nil, false, nil
	}
	return vec, true, nil
}
