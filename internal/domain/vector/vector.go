// Package vector provides fixed-dimension float32 vector arithmetic.
// Accumulation happens in float64 to limit rounding drift on long vectors.
package vector

import (
	"math"

	"github.com/studylens/fuserank/internal/domain"
)

// Dot returns the dot product of a and b.
// Returns domain.ErrDimensionMismatch when lengths differ.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Norm returns the Euclidean (L2) norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, c := range v {
		sum += float64(c) * float64(c)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-norm copy of v.
// A zero vector is returned as an equal-length zero vector, not an error.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	n := Norm(v)
	if n == 0 {
		return out
	}
	for i, c := range v {
		out[i] = float32(float64(c) / n)
	}
	return out
}

// Zero returns an all-zero vector of the given dimension.
func Zero(dim int) []float32 {
	if dim < 0 {
		dim = 0
	}
	return make([]float32, dim)
}

// PadTo returns v extended with trailing zeros to dim.
// Vectors already at or above dim are copied unchanged.
func PadTo(v []float32, dim int) []float32 {
	if dim < len(v) {
		dim = len(v)
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// Mean returns the component-wise mean of vs, padding shorter vectors with
// trailing zeros to the longest dimension. Returns nil for empty input.
func Mean(vs [][]float32) []float32 {
	if len(vs) == 0 {
		return nil
	}
	dim := 0
	for _, v := range vs {
		if len(v) > dim {
			dim = len(v)
		}
	}
	acc := make([]float64, dim)
	for _, v := range vs {
		for i, c := range v {
			acc[i] += float64(c)
		}
	}
	out := make([]float32, dim)
	for i, s := range acc {
		out[i] = float32(s / float64(len(vs)))
	}
	return out
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v []float32) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
