package fusion

import (
	"fmt"

	"github.com/studylens/fuserank/internal/domain"
	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	"github.com/studylens/fuserank/internal/domain/vector"
)

// Strategy combines a text vector and a collapsed image vector into one
// hybrid vector. Implementations are pure; a learned blend model can be
// substituted without touching the service contract.
type Strategy interface {
	Fuse(text, image []float32) []float32
	Method() domfusion.Method
}

// strategyFor selects the strategy for a config.
func strategyFor(cfg domfusion.Config) (Strategy, error) {
	switch cfg.Method {
	case domfusion.Concatenation:
		return concatStrategy{}, nil
	case domfusion.WeightedAverage:
		return weightedStrategy{text: cfg.TextWeight, image: cfg.ImageWeight}, nil
	case domfusion.DynamicAttention:
		return dynamicStrategy{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Method, domain.ErrUnknownFusionMethod)
	}
}

// concatStrategy appends the image vector after the text vector.
// Output dimension is the sum of input dimensions.
type concatStrategy struct{}

func (concatStrategy) Method() domfusion.Method { return domfusion.Concatenation }

func (concatStrategy) Fuse(text, image []float32) []float32 {
	out := make([]float32, 0, len(text)+len(image))
	out = append(out, text...)
	out = append(out, image...)
	return out
}

// weightedStrategy blends zero-padded vectors with fixed weights and
// normalizes the blend. Output dimension is the max of input dimensions.
type weightedStrategy struct {
	text  float64
	image float64
}

func (weightedStrategy) Method() domfusion.Method { return domfusion.WeightedAverage }

func (s weightedStrategy) Fuse(text, image []float32) []float32 {
	return blend(text, image, s.text, s.image)
}

// dynamicStrategy derives blend weights from the input norms, so the
// stronger modality dominates. Two zero inputs yield a zero vector.
type dynamicStrategy struct{}

func (dynamicStrategy) Method() domfusion.Method { return domfusion.DynamicAttention }

func (dynamicStrategy) Fuse(text, image []float32) []float32 {
	tn, in := vector.Norm(text), vector.Norm(image)
	if tn+in == 0 {
		dim := max(len(text), len(image))
		return vector.Zero(dim)
	}
	tw := tn / (tn + in)
	return blend(text, image, tw, 1-tw)
}

// blend pads both vectors to the longer dimension, computes the weighted
// sum per component, and normalizes the result.
func blend(text, image []float32, textWeight, imageWeight float64) []float32 {
	dim := max(len(text), len(image))
	t := vector.PadTo(text, dim)
	i := vector.PadTo(image, dim)
	out := make([]float32, dim)
	for k := range out {
		out[k] = float32(textWeight*float64(t[k]) + imageWeight*float64(i[k]))
	}
	return vector.Normalize(out)
}
