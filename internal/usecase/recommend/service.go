package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/db"
	"github.com/studylens/fuserank/internal/domain"
	"github.com/studylens/fuserank/internal/domain/candidate"
	"github.com/studylens/fuserank/internal/metrics"
)

// Service gathers per-heuristic candidate pools, composes them, and caches
// the composed list per user. The compose step itself is pure; the service
// is the caller that owns the TTL cache the engine deliberately does not.
type Service struct {
	generators     []Generator
	cache          Cache
	ttl            time.Duration
	perSourceLimit int
	finalLimit     int
	logger         *zap.Logger
}

// New creates a recommendation service.
func New(perSourceLimit, finalLimit int, logger *zap.Logger) *Service {
	return &Service{
		perSourceLimit: perSourceLimit,
		finalLimit:     finalLimit,
		logger:         logger,
	}
}

// WithGenerators registers the pool generators.
func (s *Service) WithGenerators(gens ...Generator) *Service {
	s.generators = append(s.generators, gens...)
	return s
}

// WithCache attaches a TTL cache for composed lists.
func (s *Service) WithCache(cache Cache, ttl time.Duration) *Service {
	s.cache = cache
	s.ttl = ttl
	return s
}

// Recommend returns the composed recommendation list for a user, serving
// from cache when a fresh entry exists. Individual generator failures are
// logged and skipped: a missing pool degrades the list, it does not fail
// the request.
func (s *Service) Recommend(ctx context.Context, userID string) ([]candidate.Ranked, error) {
	key := domain.RecommendationCacheKey(userID)

	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	pools := make(map[string][]candidate.Candidate, len(s.generators))
	for _, gen := range s.generators {
		pool, err := gen.Generate(ctx, userID, s.perSourceLimit)
		if err != nil {
			s.logger.Warn("Recommendation pool failed",
				zap.String("pool", gen.Name()),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		pools[gen.Name()] = pool
	}

	results := Compose(pools, s.perSourceLimit, s.finalLimit)
	s.writeCache(ctx, key, results)

	return results, nil
}

func (s *Service) readCache(ctx context.Context, key string) ([]candidate.Ranked, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Recommendation cache read failed", zap.Error(err))
		}
		metrics.RecommendationCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var dtos []rankedDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		s.logger.Warn("Recommendation cache entry corrupt", zap.Error(err))
		metrics.RecommendationCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.RecommendationCacheTotal.WithLabelValues("hit").Inc()
	return fromDTOs(dtos), true
}

func (s *Service) writeCache(ctx context.Context, key string, results []candidate.Ranked) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(toDTOs(results))
	if err != nil {
		s.logger.Warn("Recommendation cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Recommendation cache write failed", zap.Error(err))
	}
}
