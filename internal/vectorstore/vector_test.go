package vectorstore

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []float32
		want  []float32
	}{
		{"empty", []float32{}, []float32{}},
		{"zero vector", []float32{0, 0, 0}, []float32{0, 0, 0}},
		{"already unit", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"scales down", []float32{3, 4}, []float32{0.6, 0.8}},
		{"negative components", []float32{0, -2}, []float32{0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Normalize length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !almostEqual(got[i], tt.want[i]) {
					t.Errorf("Normalize[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalize_DoesNotMutate(t *testing.T) {
	t.Parallel()

	input := []float32{3, 4}
	Normalize(input)

	if input[0] != 3 || input[1] != 4 {
		t.Error("Normalize should not mutate its input")
	}
}

func TestDot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float32
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical units", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"general", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Dot(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Dot = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float32
	}{
		{"identical direction any magnitude", []float32{2, 0}, []float32{7, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 5}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CosineSimilarity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_MatchesDotOfNormalized(t *testing.T) {
	t.Parallel()

	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.4, -0.9, 1.5}

	direct := CosineSimilarity(a, b)
	viaDot := Dot(Normalize(a), Normalize(b))

	if !almostEqual(direct, viaDot) {
		t.Errorf("CosineSimilarity = %f, Dot of normalized = %f", direct, viaDot)
	}
}
