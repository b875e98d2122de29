package mathutil

import (
	"math"
	"testing"
)

func TestSquaredL2(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 6, 3}
	got := SquaredL2(a, b)
	want := float32(25) // 9 + 16 + 0
	if got != want {
		t.Errorf("SquaredL2(%v, %v) = %v, want %v", a, b, got, want)
	}

	// Identical vectors have zero distance
	if d := SquaredL2(a, a); d != 0 {
		t.Errorf("SquaredL2(a, a) = %v, want 0", d)
	}
}

func TestNorm(t *testing.T) {
	v := []float32{3, 4}
	got := Norm(v)
	want := float32(5) // sqrt(9+16)
	if math.Abs(float64(got-want)) > 0.0001 {
		t.Errorf("Norm(%v) = %v, want %v", v, got, want)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	got := Normalize(v)
	// Should be [0.6, 0.8]
	if math.Abs(float64(got[0]-0.6)) > 0.0001 || math.Abs(float64(got[1]-0.8)) > 0.0001 {
		t.Errorf("Normalize = %v, want [0.6, 0.8]", got)
	}
	if n := Norm(got); math.Abs(float64(n)-1) > 0.0001 {
		t.Errorf("Normalize result has norm %v, want 1", n)
	}

	// Zero vector is returned unchanged
	z := []float32{0, 0}
	got = Normalize(z)
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("Normalize(%v) = %v, want [0, 0]", z, got)
	}
}
