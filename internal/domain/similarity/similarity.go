// Package similarity scores vector pairs into the [0,1] range under a
// selectable metric. Every metric is a total function: mismatched dimensions
// and zero vectors map to defined fallback scores, never an error.
package similarity

import (
	"fmt"
	"math"

	"github.com/studylens/fuserank/internal/domain"
	"github.com/studylens/fuserank/internal/domain/vector"
)

// Metric selects the similarity function.
type Metric string

const (
	// Cosine is cosine similarity, with negative similarity clamped to zero.
	Cosine Metric = "cosine"
	// Euclidean remaps L2 distance between normalized vectors into [0,1].
	Euclidean Metric = "euclidean"
	// DotProduct remaps the raw dot product into [0,1], assuming unit-scale inputs.
	DotProduct Metric = "dot_product"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case Cosine, Euclidean, DotProduct:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, domain.ErrUnknownMetric)
	}
}

// Score returns the similarity of a and b under metric m, always in [0,1].
// Vectors of different lengths are defined as maximally dissimilar (0.0):
// callers compare heterogeneous fusion outputs, so a mismatch is a valid
// degraded input, not a caller bug. Unknown metrics also score 0.0.
func Score(a, b []float32, m Metric) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	switch m {
	case Cosine:
		return cosine(a, b)
	case Euclidean:
		return euclidean(a, b)
	case DotProduct:
		return dotProduct(a, b)
	default:
		return 0
	}
}

func cosine(a, b []float32) float64 {
	na, nb := vector.Norm(a), vector.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	dot, err := vector.Dot(a, b)
	if err != nil {
		return 0
	}
	return clamp01(dot / (na * nb))
}

// euclidean normalizes both inputs before measuring distance, so the
// sqrt(2*dim) remap (max distance between points on a unit hypersphere)
// holds regardless of the caller's vector scale.
func euclidean(a, b []float32) float64 {
	an, bn := vector.Normalize(a), vector.Normalize(b)
	var sum float64
	for i := range an {
		d := float64(an[i]) - float64(bn[i])
		sum += d * d
	}
	dist := math.Sqrt(sum)
	maxDist := math.Sqrt(2 * float64(len(a)))
	return clamp01(1 - dist/maxDist)
}

func dotProduct(a, b []float32) float64 {
	dot, err := vector.Dot(a, b)
	if err != nil {
		return 0
	}
	return clamp01((dot + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
