package vector

import (
	"bytes"
	"encoding/gob"
	"sort"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector/mathutil"
)

// Hit is a single nearest-neighbor match, identified by insertion row.
type Hit struct {
	Row      int
	Distance float32
}

// Flat is a brute-force squared-L2 index. Every query scans all stored
// vectors, so search is O(n) per call. That is the intended trade-off for
// corpora in the tens of thousands of vectors; it is not suitable for
// millions.
type Flat struct {
	dims    int
	vectors [][]float32
}

// NewFlat creates an empty flat index. dims fixes the dimensionality of
// every vector added; 0 defers it to the first Add.
func NewFlat(dims int) *Flat {
	return &Flat{dims: dims}
}

// Dimensions returns the index dimensionality (0 until the first vector).
func (f *Flat) Dimensions() int {
	return f.dims
}

// Add appends vectors in order. Row ids are assigned by insertion order.
// All-or-nothing: the whole batch is validated before the index (including
// its established dimensionality) is touched.
func (f *Flat) Add(vectors [][]float32) error {
	dims := f.dims
	for _, v := range vectors {
		if len(v) == 0 {
			return ErrEmptyEmbedding
		}
		if dims == 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return ErrDimMismatch
		}
	}
	f.dims = dims
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns up to k rows nearest to the query, closest first.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) == 0 {
		return nil, ErrEmptyQuery
	}
	if len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dims {
		return nil, ErrDimMismatch
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Row: i, Distance: mathutil.SquaredL2(query, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Row < hits[j].Row
	})

	return hits[:k], nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Reset removes all vectors but keeps the dimensionality.
func (f *Flat) Reset() {
	f.vectors = nil
}

// flatData is the serializable representation of the flat index.
type flatData struct {
	Dims    int
	Vectors [][]float32
}

// Marshal serializes the index.
func (f *Flat) Marshal() ([]byte, error) {
	data := flatData{Dims: f.dims, Vectors: f.vectors}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes the index.
func (f *Flat) Unmarshal(data []byte) error {
	var d flatData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return err
	}
	f.dims = d.Dims
	f.vectors = d.Vectors
	return nil
}
