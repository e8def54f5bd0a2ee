// Package candidates reads retrieval candidates out of the vector store.
package candidates

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/studylens/fuserank/internal/db"
	"github.com/studylens/fuserank/internal/domain"
	"github.com/studylens/fuserank/internal/domain/candidate"
)

// store is the consumer interface for candidate search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo turns KNN hits on a collection into retrieval candidates.
type Repo struct {
	store store
}

// New creates a candidates repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN runs a vector similarity search on a collection. Each hit's
// raw score is 1 - cosine distance, clamped to [0,1] by the db layer, and
// the collection name becomes the candidate's source tag.
func (r *Repo) SearchKNN(
	ctx context.Context, collection string, vec []float32, topK int,
) ([]candidate.Candidate, error) {
	q := &db.KNNQuery{
		IndexName: domain.IndexName(collection),
		Vector:    vec,
		K:         topK,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collection, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := domain.KeyPrefix + collection + ":"
	results := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		results = append(results, parseEntry(id, collection, entry))
	}

	return results, nil
}

// parseEntry splits flat hash fields into content, vector, tags and numerics.
func parseEntry(id, collection string, entry db.SearchEntry) candidate.Candidate {
	var content string
	var vec []float32
	tags := make(map[string]string)
	numerics := make(map[string]float64)

	for k, v := range entry.Fields {
		switch k {
		case "__content":
			content = v
		case "__vector":
			vec = db.VectorFromBytes(v)
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			} else {
				tags[k] = v
			}
		}
	}

	return candidate.New(id, entry.Score, content, collection, tags, numerics, vec)
}
