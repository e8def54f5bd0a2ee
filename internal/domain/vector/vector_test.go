package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/studylens/fuserank/internal/domain"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestDot(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		got, err := Dot([]float32{1, 2, 3}, []float32{4, 5, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !approx(got, 32) {
			t.Errorf("expected 32, got %f", got)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := Dot([]float32{1, 2}, []float32{1, 2, 3})
		if !errors.Is(err, domain.ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := Dot(nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); !approx(got, 5) {
		t.Errorf("expected 5, got %f", got)
	}
	if got := Norm(nil); got != 0 {
		t.Errorf("expected 0 for empty vector, got %f", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("unit norm", func(t *testing.T) {
		out := Normalize([]float32{3, 4})
		if !approx(Norm(out), 1) {
			t.Errorf("expected unit norm, got %f", Norm(out))
		}
		if !approx(float64(out[0]), 0.6) || !approx(float64(out[1]), 0.8) {
			t.Errorf("unexpected components: %v", out)
		}
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		out := Normalize([]float32{0, 0, 0})
		if len(out) != 3 {
			t.Fatalf("expected length 3, got %d", len(out))
		}
		for i, c := range out {
			if c != 0 {
				t.Errorf("component %d: expected 0, got %f", i, c)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{3, 4}
		Normalize(in)
		if in[0] != 3 || in[1] != 4 {
			t.Errorf("input mutated: %v", in)
		}
	})
}

func TestPadTo(t *testing.T) {
	t.Run("pads with zeros", func(t *testing.T) {
		out := PadTo([]float32{1, 2}, 4)
		want := []float32{1, 2, 0, 0}
		if len(out) != 4 {
			t.Fatalf("expected length 4, got %d", len(out))
		}
		for i := range want {
			if out[i] != want[i] {
				t.Errorf("component %d: expected %f, got %f", i, want[i], out[i])
			}
		}
	})

	t.Run("never truncates", func(t *testing.T) {
		out := PadTo([]float32{1, 2, 3}, 2)
		if len(out) != 3 {
			t.Errorf("expected length 3, got %d", len(out))
		}
	})
}

func TestMean(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := Mean(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("single vector", func(t *testing.T) {
		out := Mean([][]float32{{1, 2, 3}})
		for i, want := range []float32{1, 2, 3} {
			if out[i] != want {
				t.Errorf("component %d: expected %f, got %f", i, want, out[i])
			}
		}
	})

	t.Run("uneven dimensions pad to longest", func(t *testing.T) {
		out := Mean([][]float32{{2}, {4, 6}})
		if len(out) != 2 {
			t.Fatalf("expected length 2, got %d", len(out))
		}
		if !approx(float64(out[0]), 3) || !approx(float64(out[1]), 3) {
			t.Errorf("expected [3 3], got %v", out)
		}
	})
}

func TestIsFinite(t *testing.T) {
	if !IsFinite([]float32{1, -2, 0}) {
		t.Error("expected finite vector to pass")
	}
	if IsFinite([]float32{1, float32(math.NaN())}) {
		t.Error("expected NaN component to fail")
	}
	if IsFinite([]float32{float32(math.Inf(1))}) {
		t.Error("expected Inf component to fail")
	}
	if !IsFinite(nil) {
		t.Error("expected empty vector to pass")
	}
}
