package chunker

import "strings"

const sentenceDelim = ". "

// Sentence accumulates sentence-like units into chunks bounded by a
// character budget, seeding each new chunk with the tail of the previous
// one for overlap.
//
// Sentence boundaries come from a plain ". " split. This is a heuristic,
// not a linguistic segmenter: abbreviations, decimal numbers and
// non-English punctuation will split badly, which is acceptable because
// chunk boundaries only influence retrieval granularity, never content.
type Sentence struct {
	minSize      int
	maxSize      int
	overlapRatio float64
}

// NewSentence creates a sentence-boundary chunker. Non-positive sizes and
// an out-of-range ratio fall back to defaults (200, 500, 0.1).
func NewSentence(minSize, maxSize int, overlapRatio float64) *Sentence {
	if minSize <= 0 {
		minSize = 200
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	if overlapRatio < 0 || overlapRatio >= 1 {
		overlapRatio = 0.1
	}
	return &Sentence{minSize: minSize, maxSize: maxSize, overlapRatio: overlapRatio}
}

// Chunk splits text into overlapping sentence-bounded chunks.
func (s *Sentence) Chunk(text string) []Chunk {
	return s.ChunkWithMetadata(text, nil)
}

// ChunkWithMetadata chunks with additional metadata attached to each chunk.
func (s *Sentence) ChunkWithMetadata(text string, meta map[string]string) []Chunk {
	if text == "" {
		return nil
	}

	sentences := strings.Split(text, sentenceDelim)

	var chunks []Chunk
	var buf []string
	bufLen := 0

	appendChunk := func(content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Content:  content,
			Index:    len(chunks),
			Metadata: copyMeta(meta),
		})
	}

	for i, sentence := range sentences {
		// Reattach the delimiter to every unit except the last.
		if i < len(sentences)-1 {
			sentence += sentenceDelim
		}
		sentLen := len(sentence)

		overBudget := bufLen+sentLen > s.maxSize && len(buf) > 0
		longEnough := bufLen >= s.minSize && sentLen > 0 && len(buf) > 0

		if overBudget || longEnough {
			content := strings.TrimSpace(strings.Join(buf, ""))
			appendChunk(content)

			// Seed the next chunk with the tail of the closed one.
			overlapLen := int(float64(s.maxSize) * s.overlapRatio)
			overlap := ""
			if len(content) > overlapLen {
				overlap = content[len(content)-overlapLen:]
			}

			buf = []string{overlap + sentence}
			bufLen = len(buf[0])
		} else {
			buf = append(buf, sentence)
			bufLen += sentLen
		}
	}

	appendChunk(strings.Join(buf, ""))

	return chunks
}
