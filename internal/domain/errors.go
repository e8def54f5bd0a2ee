package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrItemNotFound signals a missing context item.
	ErrItemNotFound = errors.New("item not found")
	// ErrDimensionMismatch signals that two vectors disagree on dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrNonFiniteVector signals a NaN or Inf vector component from upstream.
	ErrNonFiniteVector = errors.New("non-finite vector component")
	// ErrUnknownFusionMethod signals an unrecognized fusion method name.
	ErrUnknownFusionMethod = errors.New("unknown fusion method")
	// ErrUnknownMetric signals an unrecognized similarity metric name.
	ErrUnknownMetric = errors.New("unknown similarity metric")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
