package fusion

import (
	"math"
	"testing"

	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	"github.com/studylens/fuserank/internal/domain/vector"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}

func TestConcatStrategy(t *testing.T) {
	out := concatStrategy{}.Fuse([]float32{1, 2}, []float32{3, 4, 5})
	want := []float32{1, 2, 3, 4, 5}
	if len(out) != len(want) {
		t.Fatalf("expected length %d, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("component %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestWeightedStrategy(t *testing.T) {
	t.Run("zero image passes text through normalized", func(t *testing.T) {
		s := weightedStrategy{text: 0.7, image: 0.3}
		out := s.Fuse([]float32{0.6, 0.8}, []float32{0, 0})
		if !approx(float64(out[0]), 0.6) || !approx(float64(out[1]), 0.8) {
			t.Errorf("expected [0.6 0.8], got %v", out)
		}
	})

	t.Run("output is unit norm", func(t *testing.T) {
		s := weightedStrategy{text: 0.7, image: 0.3}
		out := s.Fuse([]float32{1, 2, 3}, []float32{4, 5, 6})
		if !approx(vector.Norm(out), 1) {
			t.Errorf("expected unit norm, got %f", vector.Norm(out))
		}
	})

	t.Run("pads shorter vector", func(t *testing.T) {
		s := weightedStrategy{text: 0.5, image: 0.5}
		out := s.Fuse([]float32{1, 1, 1, 1}, []float32{1})
		if len(out) != 4 {
			t.Errorf("expected length 4, got %d", len(out))
		}
	})
}

func TestDynamicStrategy(t *testing.T) {
	t.Run("stronger modality dominates", func(t *testing.T) {
		// Text norm 10, image norm 1: text weight 10/11.
		out := dynamicStrategy{}.Fuse([]float32{10, 0}, []float32{0, 1})
		if out[0] <= out[1] {
			t.Errorf("expected text component to dominate: %v", out)
		}
	})

	t.Run("both zero yields zero vector", func(t *testing.T) {
		out := dynamicStrategy{}.Fuse([]float32{0, 0}, []float32{0, 0, 0})
		if len(out) != 3 {
			t.Fatalf("expected length 3, got %d", len(out))
		}
		for i, c := range out {
			if c != 0 {
				t.Errorf("component %d: expected 0, got %f", i, c)
			}
		}
	})

	t.Run("zero image reduces to text direction", func(t *testing.T) {
		out := dynamicStrategy{}.Fuse([]float32{3, 4}, []float32{0, 0})
		if !approx(float64(out[0]), 0.6) || !approx(float64(out[1]), 0.8) {
			t.Errorf("expected [0.6 0.8], got %v", out)
		}
	})
}

func TestStrategyFor(t *testing.T) {
	for _, m := range []domfusion.Method{
		domfusion.Concatenation, domfusion.WeightedAverage, domfusion.DynamicAttention,
	} {
		s, err := strategyFor(domfusion.Config{Method: m})
		if err != nil {
			t.Errorf("strategyFor(%s): unexpected error %v", m, err)
			continue
		}
		if s.Method() != m {
			t.Errorf("expected method %s, got %s", m, s.Method())
		}
	}

	if _, err := strategyFor(domfusion.Config{Method: "average"}); err == nil {
		t.Error("expected error for unknown method")
	}
}
