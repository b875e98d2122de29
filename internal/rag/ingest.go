package rag

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/chunker"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/extract"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector"
)

// DocType identifies how raw content should be turned into text.
type DocType string

const (
	DocTypePDF  DocType = "pdf"
	DocTypeText DocType = "text"
	DocTypeWeb  DocType = "web"
)

// Ingestor runs the ingestion pipeline: extract text, chunk it, embed the
// chunks and write them into the vector store.
type Ingestor struct {
	service    *Service
	chunker    chunker.Chunker
	extractors map[DocType]extract.Extractor
}

// NewIngestor creates an ingestor over the given retrieval service.
func NewIngestor(service *Service, ch chunker.Chunker) *Ingestor {
	return &Ingestor{
		service:    service,
		chunker:    ch,
		extractors: make(map[DocType]extract.Extractor),
	}
}

// RegisterExtractor installs a byte-content extractor for a document type.
// Types without an extractor treat content as UTF-8 text directly.
func (ing *Ingestor) RegisterExtractor(docType DocType, ex extract.Extractor) {
	ing.extractors[docType] = ex
}

// Ingest runs one document through the pipeline and returns the ids of the
// chunks written to the index, in chunk order.
//
// Extraction failure and empty extracted text are logged no-ops returning
// an empty id list; embedding and index write errors propagate.
// Re-ingesting the same document id is not deduplicated; it appends a
// second set of chunk entries.
func (ing *Ingestor) Ingest(ctx context.Context, content []byte, docID string, docType DocType, meta *Metadata) ([]string, error) {
	text, extractedMeta := ing.extractText(ctx, content, docID, docType)
	if strings.TrimSpace(text) == "" {
		log.Printf("rag: document %s has no extractable text, skipping ingestion", docID)
		return nil, nil
	}

	docMeta := Metadata{}
	if meta != nil {
		docMeta = *meta
	}
	docMeta.DocumentID = docID
	docMeta.DocumentType = string(docType)
	base := docMeta.ToMap()
	for k, v := range extractedMeta {
		if _, taken := base[k]; !taken {
			base[k] = v
		}
	}

	chunks := ing.chunker.Chunk(text)
	if len(chunks) == 0 {
		log.Printf("rag: no chunks generated for document %s", docID)
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ing.service.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("rag: embed chunks for %s: %w", docID, err)
	}

	entries := make([]vector.Entry, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) == 0 {
			log.Printf("rag: skipping empty-embedding chunk %d of document %s", c.Index, docID)
			continue
		}

		chunkID := fmt.Sprintf("%s_chunk_%d", docID, c.Index)
		chunkMeta := make(map[string]string, len(base)+2)
		for k, v := range base {
			chunkMeta[k] = v
		}
		chunkMeta[metaChunkIndex] = strconv.Itoa(c.Index)
		chunkMeta[metaTextLength] = strconv.Itoa(len(c.Content))

		entries = append(entries, vector.Entry{
			ID:        chunkID,
			Content:   c.Content,
			Metadata:  chunkMeta,
			Embedding: vectors[i],
		})
		ids = append(ids, chunkID)
	}
	if len(entries) == 0 {
		log.Printf("rag: no indexable chunks for document %s", docID)
		return nil, nil
	}

	if _, err := ing.service.store.Add(entries); err != nil {
		return nil, err
	}
	log.Printf("rag: ingested %d chunks for document %s", len(ids), docID)
	return ids, nil
}

// extractText resolves raw content to text per document type. For types
// with a registered extractor a failed extraction yields empty text, which
// the caller treats as a skip.
func (ing *Ingestor) extractText(ctx context.Context, content []byte, docID string, docType DocType) (string, map[string]string) {
	ex, ok := ing.extractors[docType]
	if !ok {
		// PDF bytes are unusable without an extractor; other types are
		// already text.
		if docType == DocTypePDF {
			log.Printf("rag: no extractor registered for pdf document %s, skipping", docID)
			return "", nil
		}
		return string(content), nil
	}

	text, meta, err := ex.Extract(ctx, content)
	if err != nil {
		log.Printf("rag: extraction failed for %s document %s: %v", docType, docID, err)
		return "", nil
	}
	return text, meta
}
