// Package rag orchestrates document ingestion, retrieval, prompt
// augmentation and conversation generation over the vector store and a
// completion provider.
package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/embedder"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector"
)

const (
	defaultTopK           = 3
	defaultScoreThreshold = 0.3
	defaultMaxContext     = 2000
)

// Document is one unit of ingestible content handed to AddDocuments.
type Document struct {
	ID      string
	Content string
	Source  string
}

// AddSummary reports how an AddDocuments call went.
type AddSummary struct {
	Added   int
	Skipped int
}

// Service is the retrieval core: it owns the embedding of queries and
// documents and the vector store they land in. One Service per collection,
// constructed at the composition root and shared by reference.
type Service struct {
	store    *vector.Store
	embedder embedder.Embedder

	topK       int
	threshold  float32
	maxContext int
}

// RetrievalParams overrides the retrieve and augment defaults. Zero fields
// keep the current values.
type RetrievalParams struct {
	TopK             int
	ScoreThreshold   float32
	MaxContextLength int
}

// NewService creates a retrieval service over the given store and embedder.
func NewService(store *vector.Store, emb embedder.Embedder) *Service {
	return &Service{
		store:      store,
		embedder:   emb,
		topK:       defaultTopK,
		threshold:  defaultScoreThreshold,
		maxContext: defaultMaxContext,
	}
}

// SetRetrievalParams applies configured retrieval defaults. Per-call
// arguments to RetrieveDocuments and AugmentPrompt still win when positive.
func (s *Service) SetRetrievalParams(p RetrievalParams) {
	if p.TopK > 0 {
		s.topK = p.TopK
	}
	if p.ScoreThreshold > 0 {
		s.threshold = p.ScoreThreshold
	}
	if p.MaxContextLength > 0 {
		s.maxContext = p.MaxContextLength
	}
}

// Store exposes the underlying vector store for maintenance operations.
func (s *Service) Store() *vector.Store {
	return s.store
}

// AddDocuments embeds and indexes documents. Documents with empty content
// or an empty embedding are skipped, not failed; the summary reports both
// counts. Embedding backend errors and index write errors propagate.
func (s *Service) AddDocuments(ctx context.Context, docs []Document, meta *Metadata) (AddSummary, error) {
	var summary AddSummary

	kept := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			log.Printf("rag: skipping document %s with empty content", doc.ID)
			summary.Skipped++
			continue
		}
		kept = append(kept, doc)
	}
	if len(kept) == 0 {
		return summary, nil
	}

	texts := make([]string, len(kept))
	for i, doc := range kept {
		texts[i] = doc.Content
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return summary, fmt.Errorf("rag: embed documents: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	entries := make([]vector.Entry, 0, len(kept))
	for i, doc := range kept {
		if len(vectors[i]) == 0 {
			log.Printf("rag: skipping document %s with empty embedding", doc.ID)
			summary.Skipped++
			continue
		}

		entryMeta := map[string]string{metaCreatedAt: now}
		if meta != nil {
			entryMeta = meta.ToMap()
			entryMeta[metaCreatedAt] = now
		}
		if doc.Source != "" {
			entryMeta[metaSource] = doc.Source
		}

		entries = append(entries, vector.Entry{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  entryMeta,
			Embedding: vectors[i],
		})
	}
	if len(entries) == 0 {
		return summary, nil
	}

	result, err := s.store.Add(entries)
	if err != nil {
		return summary, err
	}
	summary.Added = result.Added
	log.Printf("rag: added %d documents to collection (total %d)", result.Added, result.Total)
	return summary, nil
}

// RetrieveDocuments embeds the query, searches the index and filters by
// the relevance threshold. Filtering happens after ranking, so fewer than
// topK results (including none) may be returned. topK and threshold fall
// back to defaults when non-positive.
func (s *Service) RetrieveDocuments(ctx context.Context, query string, topK int, threshold float32) ([]vector.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if topK <= 0 {
		topK = s.topK
	}
	if threshold <= 0 {
		threshold = s.threshold
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, nil
	}

	results, err := s.store.Search(vectors[0], topK)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= threshold {
			filtered = append(filtered, r)
		}
	}
	log.Printf("rag: retrieved %d documents for query", len(filtered))
	return filtered, nil
}

// AugmentPrompt wraps the query and retrieved context in the instructional
// template. Chunks are appended in ranked order and appending stops, not
// truncates, once the next chunk would push the context block past
// maxContextLength. With no retrieved documents the query is returned
// unchanged.
func (s *Service) AugmentPrompt(query string, retrieved []vector.Result, maxContextLength int) string {
	if len(retrieved) == 0 {
		return query
	}
	if maxContextLength <= 0 {
		maxContextLength = s.maxContext
	}

	var parts []string
	total := 0
	for _, doc := range retrieved {
		source := doc.Entry.Metadata[metaSource]
		if source == "" {
			source = "unknown"
		}
		chunk := fmt.Sprintf(contextChunkFormat, source, doc.Score, doc.Entry.Content)
		if total+len(chunk) > maxContextLength {
			break
		}
		parts = append(parts, chunk)
		total += len(chunk)
	}

	return fmt.Sprintf(augmentedPromptFormat, strings.Join(parts, "\n"), query)
}
