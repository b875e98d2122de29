package embedder

import (
	"context"
	"math"
	"testing"
)

func TestHash_Deterministic(t *testing.T) {
	h := NewHash(64)
	a, err := h.Embed(context.Background(), []string{"tenant rights in Eldoria"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Embed(context.Background(), []string{"tenant rights in Eldoria"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestHash_Normalized(t *testing.T) {
	h := NewHash(128)
	vecs, err := h.Embed(context.Background(), []string{"contract law requires offer and acceptance"})
	if err != nil {
		t.Fatal(err)
	}
	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("expected unit norm, got %v", math.Sqrt(norm))
	}
}

func TestHash_EmptyTextGetsNilVector(t *testing.T) {
	h := NewHash(32)
	vecs, err := h.Embed(context.Background(), []string{"hello", "", "world"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(vecs))
	}
	if vecs[0] == nil || vecs[2] == nil {
		t.Error("non-empty texts must produce vectors")
	}
	if vecs[1] != nil {
		t.Error("empty text must map to a nil vector")
	}
}

func TestHash_FixedDimensions(t *testing.T) {
	h := NewHash(0)
	if h.Dimensions() != defaultHashDims {
		t.Errorf("expected default %d dims, got %d", defaultHashDims, h.Dimensions())
	}
	vecs, err := h.Embed(context.Background(), []string{"a", "a much longer text with many more distinct tokens inside it"})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs {
		if len(v) != defaultHashDims {
			t.Errorf("vector %d has %d dims", i, len(v))
		}
	}
}

func TestHash_SimilarTextsCloserThanUnrelated(t *testing.T) {
	h := NewHash(256)
	vecs, err := h.Embed(context.Background(), []string{
		"the tenant must receive a written eviction notice",
		"eviction requires the tenant to receive written notice",
		"photosynthesis converts sunlight into chemical energy",
	})
	if err != nil {
		t.Fatal(err)
	}
	dot := func(a, b []float32) float32 {
		var s float32
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}
	if dot(vecs[0], vecs[1]) <= dot(vecs[0], vecs[2]) {
		t.Error("overlapping texts should score higher than unrelated ones")
	}
}

func TestLazy_DefersConstruction(t *testing.T) {
	built := 0
	l := NewLazy("hash", func() (Embedder, error) {
		built++
		return NewHash(16), nil
	})
	if built != 0 {
		t.Fatal("backend built before first use")
	}
	if _, err := l.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Embed(context.Background(), []string{"y"}); err != nil {
		t.Fatal(err)
	}
	if built != 1 {
		t.Errorf("backend built %d times, want 1", built)
	}
	if l.Name() != "hash" {
		t.Errorf("unexpected name %q", l.Name())
	}
	if l.Dimensions() != 16 {
		t.Errorf("unexpected dims %d", l.Dimensions())
	}
}

func TestLazy_SurfacesInitError(t *testing.T) {
	l := NewLazy("broken", func() (Embedder, error) {
		return nil, context.DeadlineExceeded
	})
	_, err := l.Embed(context.Background(), []string{"x"})
	if err == nil {
		t.Fatal("expected init error")
	}
	if l.Dimensions() != 0 {
		t.Error("failed backend should report zero dimensions")
	}
}
