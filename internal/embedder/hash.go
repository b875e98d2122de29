package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector/mathutil"
)

// Compile-time interface check.
var _ Embedder = (*Hash)(nil)

const defaultHashDims = 384

// Hash is a local feature-hashing embedder. Each token is hashed into a
// fixed bucket and the resulting count vector is L2-normalized. Unlike a
// vocabulary model it needs no training and always produces the same
// dimensionality, so vectors from different runs stay comparable.
type Hash struct {
	dims int
}

// NewHash creates a feature-hashing embedder. dims defaults to 384 when
// non-positive.
func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = defaultHashDims
	}
	return &Hash{dims: dims}
}

// Embed converts texts to hashed term-frequency vectors. Empty texts map
// to nil vectors so callers can tell them apart from real embeddings.
func (h *Hash) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		words := tokenize(text)
		if len(words) == 0 {
			continue
		}

		vec := make([]float32, h.dims)
		for _, w := range words {
			bucket, sign := h.bucket(w)
			vec[bucket] += sign
		}

		vectors[i] = mathutil.Normalize(vec)
	}

	return vectors, nil
}

// bucket maps a token to an index and a +1/-1 sign. Signed hashing keeps
// colliding tokens from always reinforcing each other.
func (h *Hash) bucket(word string) (int, float32) {
	hsh := fnv.New64a()
	hsh.Write([]byte(word))
	sum := hsh.Sum64()

	sign := float32(1)
	if sum&1 == 1 {
		sign = -1
	}
	return int((sum >> 1) % uint64(h.dims)), sign
}

// Dimensions returns the fixed vector size.
func (h *Hash) Dimensions() int {
	return h.dims
}

// Name returns the embedder name.
func (h *Hash) Name() string {
	return "hash"
}

// tokenize splits text into lowercase words.
func tokenize(text string) []string {
	var words []string
	var word strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}

	return words
}
