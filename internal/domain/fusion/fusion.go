// Package fusion holds the value types for hybrid multi-modal fusion.
package fusion

import (
	"fmt"

	"github.com/studylens/fuserank/internal/domain"
)

// Method selects how text and image vectors are combined.
type Method string

const (
	// Concatenation appends the image vector after the text vector.
	Concatenation Method = "concatenation"
	// WeightedAverage blends zero-padded vectors with fixed configured weights.
	WeightedAverage Method = "weighted_average"
	// DynamicAttention derives the blend weights from input magnitudes.
	DynamicAttention Method = "dynamic_attention"
)

// ParseMethod validates a fusion method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Concatenation, WeightedAverage, DynamicAttention:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, domain.ErrUnknownFusionMethod)
	}
}

// Config holds the fusion parameters for one call.
// TextWeight and ImageWeight apply to WeightedAverage only; DynamicAttention
// recomputes them from input norms and Concatenation ignores them.
type Config struct {
	Method      Method
	TextWeight  float64
	ImageWeight float64
	// ImageDim is the dimension substituted for a missing image modality.
	ImageDim int
}

// DefaultConfig returns the source-system defaults: weighted average with a
// 0.7/0.3 text/image split.
func DefaultConfig() Config {
	return Config{
		Method:      WeightedAverage,
		TextWeight:  0.7,
		ImageWeight: 0.3,
	}
}

// Validate checks that the method is known and blend weights sum to 1.0
// within tolerance when they matter.
func (c Config) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.Method == WeightedAverage {
		sum := c.TextWeight + c.ImageWeight
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("fusion weights must sum to 1.0, got %g", sum)
		}
	}
	if c.ImageDim < 0 {
		return fmt.Errorf("image dimension must be non-negative, got %d", c.ImageDim)
	}
	return nil
}

// HybridResult is the outcome of one fusion call. On failure the vectors are
// explicit zero vectors of the expected dimensions, never nil, so callers do
// not branch on missing fields.
type HybridResult struct {
	Hybrid  []float32
	Text    []float32
	Image   []float32
	Method  Method
	Success bool
	Error   string
}
