// Package chunker splits document text into overlapping segments sized
// for embedding.
package chunker

// Chunk represents a piece of a document.
type Chunk struct {
	Content  string
	Index    int
	Metadata map[string]string
}

// Chunker splits documents into indexable pieces.
type Chunker interface {
	// Chunk splits text into pieces.
	Chunk(text string) []Chunk

	// ChunkWithMetadata includes source metadata on each chunk.
	ChunkWithMetadata(text string, meta map[string]string) []Chunk
}

func copyMeta(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
