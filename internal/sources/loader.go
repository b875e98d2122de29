package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/scrape"
)

// Summary reports the outcome of one Sync pass.
type Summary struct {
	Ingested int
	Skipped  int
	Failed   int
}

// Loader resolves manifest entries to content and ingests them. It keeps a
// per-source content hash on disk so unchanged entries are skipped on the
// next pass, which is the practical answer to the pipeline's lack of
// dedup on re-ingestion.
type Loader struct {
	ingestor  *rag.Ingestor
	scraper   *scrape.Scraper
	statePath string
	state     map[string]string // source id -> content hash
}

// NewLoader creates a loader. statePath holds the sync-state JSON file;
// a missing or unreadable file just means every source is considered new.
func NewLoader(ingestor *rag.Ingestor, scraper *scrape.Scraper, statePath string) *Loader {
	l := &Loader{
		ingestor:  ingestor,
		scraper:   scraper,
		statePath: statePath,
		state:     make(map[string]string),
	}
	l.loadState()
	return l
}

// Sync runs every manifest entry through the pipeline. A failing source is
// logged and counted, never aborts the pass.
func (l *Loader) Sync(ctx context.Context, manifest *Manifest) (Summary, error) {
	var summary Summary

	for _, src := range manifest.Sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		content, docType, meta, err := l.resolve(ctx, src)
		if err != nil {
			log.Printf("sources: failed to resolve %s: %v", src.ID, err)
			summary.Failed++
			continue
		}

		hash := contentHash(content)
		if l.state[src.ID] == hash {
			summary.Skipped++
			continue
		}

		ids, err := l.ingestor.Ingest(ctx, content, src.ID, docType, meta)
		if err != nil {
			log.Printf("sources: failed to ingest %s: %v", src.ID, err)
			summary.Failed++
			continue
		}
		if len(ids) == 0 {
			summary.Skipped++
			continue
		}

		l.state[src.ID] = hash
		summary.Ingested++
	}

	l.saveState()
	log.Printf("sources: sync done: %d ingested, %d skipped, %d failed",
		summary.Ingested, summary.Skipped, summary.Failed)
	return summary, nil
}

// resolve fetches a source's raw content and builds its document metadata.
func (l *Loader) resolve(ctx context.Context, src Source) ([]byte, rag.DocType, *rag.Metadata, error) {
	meta := &rag.Metadata{
		Title:        src.Title,
		Jurisdiction: src.Jurisdiction,
		Extra:        src.Metadata,
	}

	if src.URL != "" {
		page, err := l.scraper.Fetch(ctx, src.URL)
		if err != nil {
			return nil, "", nil, err
		}
		if meta.Title == "" {
			meta.Title = page.Title
		}
		meta.Source = "web:" + src.URL
		return []byte(page.Text), rag.DocTypeWeb, meta, nil
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, "", nil, err
	}

	docType := rag.DocType(src.Type)
	if docType == "" {
		docType = rag.DocTypeText
		if strings.EqualFold(filepath.Ext(src.Path), ".pdf") {
			docType = rag.DocTypePDF
		}
	}
	meta.Source = fmt.Sprintf("%s:%s", docType, filepath.Base(src.Path))
	return data, docType, meta, nil
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (l *Loader) loadState() {
	data, err := os.ReadFile(l.statePath)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &l.state); err != nil {
		log.Printf("sources: ignoring corrupt sync state %s: %v", l.statePath, err)
		l.state = make(map[string]string)
	}
}

// saveState persists the sync state, best-effort.
func (l *Loader) saveState() {
	data, err := json.MarshalIndent(l.state, "", "  ")
	if err != nil {
		log.Printf("sources: failed to marshal sync state: %v", err)
		return
	}
	if err := os.WriteFile(l.statePath, data, 0o644); err != nil {
		log.Printf("sources: failed to save sync state: %v", err)
	}
}
