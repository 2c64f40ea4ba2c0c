package googleEmbedding

import (
	"math"
	"testing"
)

func TestNormalize_UnitLength(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"simple", []float32{3, 4}},
		{"already_unit", []float32{1, 0, 0}},
		{"negative_components", []float32{-0.5, 0.25, 2.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.vector)

			var sum float64
			for _, v := range got {
				sum += float64(v) * float64(v)
			}
			norm := math.Sqrt(sum)
			if math.Abs(norm-1.0) > 1e-4 {
				t.Errorf("L2 norm = %v, want 1.0 +- 1e-4", norm)
			}
		})
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	got := normalize([]float32{0, 0, 0})
	for i, v := range got {
		if v != 0 {
			t.Errorf("component %d = %v, want 0", i, v)
		}
	}
}

func TestGetContent(t *testing.T) {
	contents := getContent([]string{"a", "b"})
	if len(contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(contents))
	}
	if contents[1].Parts[0].Text != "b" {
		t.Errorf("Content text mismatch: %q", contents[1].Parts[0].Text)
	}
}
