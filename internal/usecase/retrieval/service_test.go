package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain/candidate"
	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	"github.com/studylens/fuserank/internal/usecase/rank"
)

// --- Mocks ---

type mockRepo struct {
	byCollection map[string][]candidate.Candidate
	err          error
	calls        []string
}

func (m *mockRepo) SearchKNN(
	_ context.Context, collection string, _ []float32, _ int,
) ([]candidate.Candidate, error) {
	m.calls = append(m.calls, collection)
	if m.err != nil {
		return nil, m.err
	}
	return m.byCollection[collection], nil
}

type mockFuser struct {
	result domfusion.HybridResult
	err    error
}

func (m *mockFuser) FuseContent(
	_ context.Context, _ string, _ []string,
) (domfusion.HybridResult, error) {
	return m.result, m.err
}

type mockRecent struct {
	saved [][]float32
	err   error
}

func (m *mockRecent) Save(_ context.Context, _ string, vec []float32) error {
	m.saved = append(m.saved, vec)
	return m.err
}

func okFusion(vec []float32) domfusion.HybridResult {
	return domfusion.HybridResult{
		Hybrid:  vec,
		Method:  domfusion.WeightedAverage,
		Success: true,
	}
}

func makeCandidate(id string, score float64, source string) candidate.Candidate {
	return candidate.New(id, score, "content-"+id, source, nil, nil, nil)
}

func newService(repo Repository, fuser Fuser, collections []string) *Service {
	return New(repo, fuser, rank.NewAggregator(zap.NewNop()), collections, zap.NewNop())
}

// --- Tests ---

func TestSearch_AggregatesAcrossCollections(t *testing.T) {
	repo := &mockRepo{byCollection: map[string][]candidate.Candidate{
		"questions":    {makeCandidate("q1", 0.5, "questions")},
		"explanations": {makeCandidate("e1", 0.9, "explanations"), makeCandidate("q1", 0.8, "explanations")},
	}}
	svc := newService(repo, &mockFuser{result: okFusion([]float32{1, 0})},
		[]string{"questions", "explanations"})

	results, confidence, err := svc.Search(context.Background(), "", "query", nil, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.calls) != 2 || repo.calls[0] != "questions" || repo.calls[1] != "explanations" {
		t.Errorf("expected both collections searched in order, got %v", repo.calls)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 deduplicated results, got %d", len(results))
	}
	if results[0].ID() != "e1" {
		t.Errorf("expected e1 first, got %s", results[0].ID())
	}
	if results[1].Similarity() != 0.8 {
		t.Errorf("dedup should keep q1's max score 0.8, got %f", results[1].Similarity())
	}
	if confidence <= 0 || confidence > 1 {
		t.Errorf("confidence out of range: %f", confidence)
	}
}

func TestSearch_DegradedFusionReturnsEmpty(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo, &mockFuser{result: domfusion.HybridResult{
		Success: false, Error: "text vector has non-finite components",
	}}, []string{"questions"})

	results, confidence, err := svc.Search(context.Background(), "", "query", nil, 10, 0)
	if err != nil {
		t.Fatalf("degraded fusion must not error: %v", err)
	}
	if len(results) != 0 || confidence != 0 {
		t.Errorf("expected empty results with zero confidence, got %d/%f", len(results), confidence)
	}
	if len(repo.calls) != 0 {
		t.Error("no search should run for a degraded fusion")
	}
}

func TestSearch_EmbeddingErrorPropagates(t *testing.T) {
	embErr := errors.New("provider down")
	svc := newService(&mockRepo{}, &mockFuser{err: embErr}, []string{"questions"})

	_, _, err := svc.Search(context.Background(), "", "query", nil, 10, 0)
	if !errors.Is(err, embErr) {
		t.Errorf("expected embedding error, got %v", err)
	}
}

func TestSearch_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("ft search failed")
	svc := newService(&mockRepo{err: storeErr},
		&mockFuser{result: okFusion([]float32{1})}, []string{"questions"})

	_, _, err := svc.Search(context.Background(), "", "query", nil, 10, 0)
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestSearch_DefaultsApplied(t *testing.T) {
	many := make([]candidate.Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, makeCandidate(string(rune('a'+i)), 0.9, "questions"))
	}
	repo := &mockRepo{byCollection: map[string][]candidate.Candidate{"questions": many}}
	svc := newService(repo, &mockFuser{result: okFusion([]float32{1})},
		[]string{"questions"}).WithDefaults(5, 0)

	results, _, err := svc.Search(context.Background(), "", "query", nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("expected default topK 5 applied, got %d", len(results))
	}
}

func TestSearch_RecentVectorRecorded(t *testing.T) {
	recent := &mockRecent{}
	svc := newService(&mockRepo{}, &mockFuser{result: okFusion([]float32{1, 0})},
		[]string{"questions"}).WithRecentRecorder(recent)

	t.Run("with user", func(t *testing.T) {
		_, _, err := svc.Search(context.Background(), "alice", "query", nil, 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recent.saved) != 1 {
			t.Errorf("expected one recent save, got %d", len(recent.saved))
		}
	})

	t.Run("anonymous query is not recorded", func(t *testing.T) {
		before := len(recent.saved)
		_, _, _ = svc.Search(context.Background(), "", "query", nil, 10, 0)
		if len(recent.saved) != before {
			t.Error("anonymous queries must not be recorded")
		}
	})

	t.Run("save failure does not fail the search", func(t *testing.T) {
		recent.err = errors.New("kv down")
		_, _, err := svc.Search(context.Background(), "alice", "query", nil, 10, 0)
		if err != nil {
			t.Errorf("recent save is best-effort: %v", err)
		}
	})
}
