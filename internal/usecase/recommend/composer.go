// Package recommend composes heterogeneous recommendation pools into one
// ranked, deduplicated, size-capped list.
package recommend

import (
	"sort"

	"github.com/studylens/fuserank/internal/domain/candidate"
	"github.com/studylens/fuserank/internal/usecase/rank"
)

// Compose caps each named pool at perSourceLimit, merges the capped pools
// with the same dedup-by-max-score and stable-sort policy the aggregator
// uses, and truncates to finalLimit.
//
// The per-source cap runs before the global merge so that every heuristic
// (knowledge-gap, similar-to-recent, trending, spaced-repetition) gets fair
// representation before ranking. Pools are visited in sorted name order to
// keep tie placement independent of map iteration.
func Compose(
	pools map[string][]candidate.Candidate, perSourceLimit, finalLimit int,
) []candidate.Ranked {
	names := make([]string, 0, len(pools))
	for name := range pools {
		names = append(names, name)
	}
	sort.Strings(names)

	lists := make([][]candidate.Candidate, 0, len(names))
	for _, name := range names {
		pool := pools[name]
		if perSourceLimit > 0 && len(pool) > perSourceLimit {
			pool = pool[:perSourceLimit]
		}
		lists = append(lists, pool)
	}

	merged := rank.Merge(lists, 0)
	if finalLimit > 0 && len(merged) > finalLimit {
		merged = merged[:finalLimit]
	}

	results := make([]candidate.Ranked, len(merged))
	for i, c := range merged {
		results[i] = candidate.FromCandidate(c)
	}
	return results
}
