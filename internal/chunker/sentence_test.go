package chunker

import (
	"strings"
	"testing"
)

func TestSentence_Empty(t *testing.T) {
	c := NewSentence(200, 500, 0.1)
	if got := c.Chunk(""); got != nil {
		t.Fatalf("expected nil for empty input, got %d chunks", len(got))
	}
}

func TestSentence_NoDelimiter(t *testing.T) {
	c := NewSentence(200, 500, 0.1)
	text := strings.Repeat("x", 1200)
	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk for delimiter-free text, got %d", len(chunks))
	}
	if chunks[0].Content != text {
		t.Error("single chunk should carry the full text")
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSentence_ShortText(t *testing.T) {
	c := NewSentence(200, 500, 0.1)
	chunks := c.Chunk("First sentence. Second sentence.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "First sentence. Second sentence." {
		t.Errorf("unexpected content: %q", chunks[0].Content)
	}
}

func TestSentence_SplitsLongText(t *testing.T) {
	c := NewSentence(200, 500, 0.1)

	var b strings.Builder
	sentence := "The quick brown fox jumps over the lazy dog near the riverbank"
	for i := 0; i < 40; i++ {
		b.WriteString(sentence)
		b.WriteString(". ")
	}
	text := strings.TrimSuffix(b.String(), " ")

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// No chunk may exceed the budget plus the overlap seed and one sentence.
	limit := 500 + 50 + len(sentence) + len(sentenceDelim)
	for _, ch := range chunks {
		if len(ch.Content) > limit {
			t.Errorf("chunk %d is %d chars, limit %d", ch.Index, len(ch.Content), limit)
		}
		if ch.Content == "" {
			t.Errorf("chunk %d is empty", ch.Index)
		}
	}

	// Chunks together must cover at least the source text.
	total := 0
	for _, ch := range chunks {
		total += len(ch.Content)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d chars, source is %d", total, len(text))
	}
}

func TestSentence_Overlap(t *testing.T) {
	c := NewSentence(100, 200, 0.1)

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("A contract requires offer acceptance and consideration to bind")
		b.WriteString(". ")
	}
	chunks := c.Chunk(strings.TrimSpace(b.String()))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first starts with the tail of its predecessor.
	overlapLen := int(float64(200) * 0.1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		if len(prev) <= overlapLen {
			continue
		}
		tail := prev[len(prev)-overlapLen:]
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Errorf("chunk %d does not start with predecessor tail %q", i, tail)
		}
	}
}

func TestSentence_SequentialIndexes(t *testing.T) {
	c := NewSentence(50, 100, 0.1)
	text := strings.Repeat("Short sentence here for testing purposes today. ", 20)
	chunks := c.Chunk(strings.TrimSpace(text))
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
	}
}

func TestSentence_MetadataCopied(t *testing.T) {
	c := NewSentence(200, 500, 0.1)
	meta := map[string]string{"source": "statute"}
	chunks := c.ChunkWithMetadata("One brief sentence.", meta)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	chunks[0].Metadata["source"] = "changed"
	if meta["source"] != "statute" {
		t.Error("chunk metadata must not alias the caller's map")
	}
}

func TestSentence_DefaultsOnBadParams(t *testing.T) {
	c := NewSentence(0, -1, 2.0)
	if c.minSize != 200 || c.maxSize != 500 || c.overlapRatio != 0.1 {
		t.Errorf("defaults not applied: %d %d %v", c.minSize, c.maxSize, c.overlapRatio)
	}
}
