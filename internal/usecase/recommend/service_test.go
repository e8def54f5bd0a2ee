package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/db"
	"github.com/studylens/fuserank/internal/domain/candidate"
)

// --- Mocks ---

type mockCache struct {
	data     map[string][]byte
	getCalls int
	setCalls int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.getCalls++
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.setCalls++
	m.data[key] = value
	return nil
}

// --- Tests ---

func TestRecommend_ComposesPools(t *testing.T) {
	svc := New(10, 10, zap.NewNop()).WithGenerators(
		NewGenerator("similar", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
			return []candidate.Candidate{makeCandidate("a", 0.9, "similar")}, nil
		}),
		NewGenerator("gap", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
			return []candidate.Candidate{makeCandidate("b", 0.7, "gap")}, nil
		}),
	)

	out, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ID() != "a" {
		t.Errorf("expected a first, got %s", out[0].ID())
	}
}

func TestRecommend_GeneratorFailureSkipsPool(t *testing.T) {
	svc := New(10, 10, zap.NewNop()).WithGenerators(
		NewGenerator("broken", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
			return nil, errors.New("store down")
		}),
		NewGenerator("working", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
			return []candidate.Candidate{makeCandidate("x", 0.5, "working")}, nil
		}),
	)

	out, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("a failing pool must not fail the request: %v", err)
	}
	if len(out) != 1 || out[0].ID() != "x" {
		t.Errorf("expected surviving pool only, got %d results", len(out))
	}
}

func TestRecommend_CacheHitSkipsGenerators(t *testing.T) {
	calls := 0
	cache := newMockCache()
	svc := New(10, 10, zap.NewNop()).
		WithCache(cache, time.Minute).
		WithGenerators(
			NewGenerator("pool", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
				calls++
				return []candidate.Candidate{makeCandidate("a", 0.9, "pool")}, nil
			}),
		)

	first, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || cache.setCalls != 1 {
		t.Fatalf("expected one generate + one cache write, got %d/%d", calls, cache.setCalls)
	}

	second, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Error("cache hit should not re-run generators")
	}
	if len(second) != len(first) || second[0].ID() != first[0].ID() ||
		second[0].Similarity() != first[0].Similarity() {
		t.Error("cached list should round-trip unchanged")
	}
}

func TestRecommend_UsersCachedSeparately(t *testing.T) {
	cache := newMockCache()
	svc := New(10, 10, zap.NewNop()).
		WithCache(cache, time.Minute).
		WithGenerators(
			NewGenerator("pool", func(_ context.Context, userID string, _ int) ([]candidate.Candidate, error) {
				return []candidate.Candidate{makeCandidate("item-"+userID, 0.9, "pool")}, nil
			}),
		)

	outA, _ := svc.Recommend(context.Background(), "alice")
	outB, _ := svc.Recommend(context.Background(), "bob")

	if outA[0].ID() == outB[0].ID() {
		t.Error("per-user cache keys must not collide")
	}
}

func TestRecommend_CorruptCacheFallsBack(t *testing.T) {
	cache := newMockCache()
	svc := New(10, 10, zap.NewNop()).
		WithCache(cache, time.Minute).
		WithGenerators(
			NewGenerator("pool", func(_ context.Context, _ string, _ int) ([]candidate.Candidate, error) {
				return []candidate.Candidate{makeCandidate("a", 0.9, "pool")}, nil
			}),
		)

	// Poison the cache entry, then expect a regenerated list.
	_, _ = svc.Recommend(context.Background(), "user-1")
	for k := range cache.data {
		cache.data[k] = []byte("{not json")
	}

	out, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected regenerated list, got %d results", len(out))
	}
}

func TestSimilarToRecentGenerator(t *testing.T) {
	t.Run("no recent activity yields empty pool", func(t *testing.T) {
		gen := NewSimilarToRecentGenerator("similar", "questions",
			recentStub{}, searcherStub{t: t})

		pool, err := gen.Generate(context.Background(), "user-1", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pool) != 0 {
			t.Errorf("expected empty pool, got %d", len(pool))
		}
	})

	t.Run("recent vector drives the search", func(t *testing.T) {
		gen := NewSimilarToRecentGenerator("similar", "questions",
			recentStub{vec: []float32{1, 0}, ok: true},
			searcherStub{t: t, wantVec: []float32{1, 0}, result: []candidate.Candidate{
				makeCandidate("a", 0.8, "questions"),
			}})

		pool, err := gen.Generate(context.Background(), "user-1", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pool) != 1 || pool[0].ID() != "a" {
			t.Errorf("unexpected pool: %d results", len(pool))
		}
	})
}

type recentStub struct {
	vec []float32
	ok  bool
}

func (s recentStub) Load(_ context.Context, _ string) ([]float32, bool, error) {
	return s.vec, s.ok, nil
}

type searcherStub struct {
	t       *testing.T
	wantVec []float32
	result  []candidate.Candidate
}

func (s searcherStub) SearchKNN(
	_ context.Context, _ string, vec []float32, _ int,
) ([]candidate.Candidate, error) {
	if s.wantVec != nil {
		if len(vec) != len(s.wantVec) {
			s.t.Errorf("unexpected query vector length %d", len(vec))
		}
	}
	return s.result, nil
}
