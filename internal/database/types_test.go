package database

import (
	"math"
	"testing"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"length mismatch", []float32{1, 0}, []float32{1}, 2},
		{"empty", nil, nil, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineDistance(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("CosineDistance() = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3}, {-1, -2, -3}, {0.5, -0.25, 4}, {3, 0, 0}, {0, 0, 0},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			s := CosineSimilarity(a, b)
			if s < -1 || s > 1 {
				t.Errorf("CosineSimilarity(%v, %v) = %f, out of [-1, 1]", a, b, s)
			}
		}
	}
}

func TestFilterBySimilarity(t *testing.T) {
	persons := []SimilarPerson{
		{PersonID: "carol", CosineSimilarity: 0.40},
		{PersonID: "bob", CosineSimilarity: 0.92},
		{PersonID: "dave", CosineSimilarity: 0.5},
		{PersonID: "eve", CosineSimilarity: -0.3},
	}

	got := FilterBySimilarity(persons, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(got))
	}
	if got[0].PersonID != "bob" || got[1].PersonID != "dave" {
		t.Errorf("expected [bob dave], got [%s %s]", got[0].PersonID, got[1].PersonID)
	}

	// The threshold is inclusive.
	if got[1].CosineSimilarity != 0.5 {
		t.Errorf("expected boundary value to be kept")
	}
}

func TestFilterBySimilarity_Idempotent(t *testing.T) {
	persons := []SimilarPerson{
		{PersonID: "a", CosineSimilarity: 0.1},
		{PersonID: "b", CosineSimilarity: 0.7},
		{PersonID: "c", CosineSimilarity: 0.7},
		{PersonID: "d", CosineSimilarity: 0.95},
		{PersonID: "e", CosineSimilarity: -1},
	}

	for _, threshold := range []float64{-1, 0, 0.1, 0.5, 0.7, 1} {
		once := FilterBySimilarity(persons, threshold)
		twice := FilterBySimilarity(once, threshold)
		if len(once) != len(twice) {
			t.Fatalf("threshold %f: lengths differ %d != %d", threshold, len(once), len(twice))
		}
		for i := range once {
			if once[i].PersonID != twice[i].PersonID {
				t.Errorf("threshold %f: position %d differs: %s != %s", threshold, i, once[i].PersonID, twice[i].PersonID)
			}
		}
		for i := 1; i < len(once); i++ {
			if once[i-1].CosineSimilarity < once[i].CosineSimilarity {
				t.Errorf("threshold %f: results not sorted descending", threshold)
			}
		}
	}
}

func TestAssetFace_IsNamed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Alice", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{" Bob ", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := AssetFace{PersonName: tc.name}
			if got := f.IsNamed(); got != tc.want {
				t.Errorf("IsNamed(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestAssetFaceCount_Unhidden(t *testing.T) {
	c := AssetFaceCount{AssetID: "a1", FaceCount: 25, HiddenCount: 4}
	if c.Unhidden() != 21 {
		t.Errorf("expected 21 unhidden faces, got %d", c.Unhidden())
	}
}
