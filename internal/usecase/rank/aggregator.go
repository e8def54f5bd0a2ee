// Package rank merges candidate lists from multiple sources into one
// deduplicated, ordered, size-bounded result set.
package rank

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain/candidate"
	"github.com/studylens/fuserank/internal/metrics"
)

// Aggregator merges per-source candidate lists for one query.
type Aggregator struct {
	reranker Reranker
	logger   *zap.Logger
}

// NewAggregator creates an aggregator without a reranking pass.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// WithReranker attaches an optional reranking pass.
func (a *Aggregator) WithReranker(r Reranker) *Aggregator {
	a.reranker = r
	return a
}

// Aggregate concatenates the candidate lists, deduplicates by id keeping the
// highest raw score, drops candidates below threshold, sorts descending by
// raw score (stable, so equal scores keep first-seen order), truncates to
// topK, and applies the reranker when one is attached.
//
// The merge is deterministic for a given input multiset: reordering the
// input lists can only change the placement of exact score ties.
func (a *Aggregator) Aggregate(
	ctx context.Context, query string,
	lists [][]candidate.Candidate, topK int, threshold float64,
) []candidate.Ranked {
	merged := Merge(lists, threshold)
	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}

	results := make([]candidate.Ranked, len(merged))
	for i, c := range merged {
		results[i] = candidate.FromCandidate(c)
	}

	metrics.AggregationCandidates.Observe(float64(len(results)))

	if a.reranker == nil || len(results) == 0 {
		return results
	}

	reranked, err := a.reranker.Rerank(ctx, query, results)
	if err != nil {
		// Best-effort: the similarity-sorted order is still valid evidence.
		a.logger.Warn("Reranker failed, keeping similarity order",
			zap.Int("results", len(results)),
			zap.Error(err),
		)
		return results
	}
	return reranked
}

// Merge flattens the lists, deduplicates by id keeping the occurrence with
// the highest raw score (ties keep the first seen), filters by threshold,
// and stable-sorts descending by raw score.
func Merge(lists [][]candidate.Candidate, threshold float64) []candidate.Candidate {
	var out []candidate.Candidate
	pos := make(map[string]int)

	for _, list := range lists {
		for _, c := range list {
			if i, ok := pos[c.ID()]; ok {
				if c.RawScore() > out[i].RawScore() {
					out[i] = c
				}
				continue
			}
			pos[c.ID()] = len(out)
			out = append(out, c)
		}
	}

	filtered := out[:0]
	for _, c := range out {
		if c.RawScore() >= threshold {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RawScore() > filtered[j].RawScore()
	})

	return filtered
}

// Confidence summarizes a ranked result set into [0,1] via a rank-weighted
// average: the result at position i weighs 1/(i+1), so top-ranked evidence
// dominates the score the way it dominates downstream answer quality.
// An empty set scores 0.0.
func Confidence(results []candidate.Ranked) float64 {
	if len(results) == 0 {
		return 0
	}
	var weighted, total float64
	for i := range results {
		w := 1.0 / float64(i+1)
		weighted += results[i].Similarity() * w
		total += w
	}
	c := weighted / total
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
