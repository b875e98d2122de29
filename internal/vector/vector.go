// Package vector implements the persistent vector index used for
// retrieval: a flat squared-L2 index alongside a parallel list of chunk
// payloads, serialized together to a pair of files per collection.
package vector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Entry is the persisted triple of chunk content, metadata and embedding.
// Insertion order doubles as the row id used for nearest-neighbor lookups.
type Entry struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Result is an Entry plus a relevance score in (0,1], higher is more
// relevant. The score is an absolute mapping of squared L2 distance,
// score = 1/(1+distance), so an identical embedding scores 1 and scores
// are comparable across search calls.
type Result struct {
	Entry Entry
	Score float32
}

// AddResult reports the outcome of an Add call.
type AddResult struct {
	Added int
	Total int
}

// Store is a named collection of entries with nearest-neighbor search and
// file persistence. Mutations take the write lock and persist before
// returning; searches take the read lock. One writer at a time, many
// concurrent readers.
type Store struct {
	dir        string
	collection string

	flat    *Flat
	entries []Entry
	mu      sync.RWMutex
}

// Open creates a store for the named collection under dir, loading any
// persisted state. A missing or unreadable pair of files is not an error;
// the store starts empty. dir is created if needed.
func Open(dir, collection string) (*Store, error) {
	if collection == "" {
		collection = "default"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapError("Open", err)
	}

	s := &Store{
		dir:        dir,
		collection: collection,
		flat:       NewFlat(0),
	}

	if err := s.load(); err != nil {
		log.Printf("vector: loading collection %q: %v (starting empty)", collection, err)
		s.flat = NewFlat(0)
		s.entries = nil
	}

	return s, nil
}

// indexPath is the serialized flat index file.
func (s *Store) indexPath() string {
	return filepath.Join(s.dir, s.collection+".index")
}

// docsPath is the serialized parallel entry list file.
func (s *Store) docsPath() string {
	return filepath.Join(s.dir, s.collection+".docs")
}

// load restores the index and entry list from disk. Both files must be
// present; a single surviving file is treated as no existing index.
func (s *Store) load() error {
	indexData, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	docsData, err := os.ReadFile(s.docsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	flat := NewFlat(0)
	if err := flat.Unmarshal(indexData); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(docsData)).Decode(&entries); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	if flat.Len() != len(entries) {
		return ErrEntryCountSkew
	}

	s.flat = flat
	s.entries = entries
	log.Printf("vector: loaded collection %q with %d entries", s.collection, len(entries))
	return nil
}

// persist writes both files. Called with the write lock held. A failed
// write leaves the in-memory index ahead of disk; the caller surfaces the
// error so ingestion can report it.
func (s *Store) persist() error {
	indexData, err := s.flat.Marshal()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.entries); err != nil {
		return err
	}

	if err := os.WriteFile(s.indexPath(), indexData, 0o644); err != nil {
		return err
	}
	return os.WriteFile(s.docsPath(), buf.Bytes(), 0o644)
}

// Add appends entries and persists the collection. Entries are never
// deduplicated by id; re-adding the same id creates independent rows.
// All-or-nothing: a dimension mismatch anywhere in the batch leaves the
// store untouched.
func (s *Store) Add(entries []Entry) (AddResult, error) {
	if len(entries) == 0 {
		s.mu.RLock()
		total := len(s.entries)
		s.mu.RUnlock()
		return AddResult{Added: 0, Total: total}, nil
	}

	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		vectors[i] = e.Embedding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flat.Add(vectors); err != nil {
		return AddResult{Total: len(s.entries)}, wrapError("Add", err)
	}
	s.entries = append(s.entries, entries...)

	if err := s.persist(); err != nil {
		return AddResult{Added: len(entries), Total: len(s.entries)},
			wrapError("Add.persist", err)
	}

	return AddResult{Added: len(entries), Total: len(s.entries)}, nil
}

// Search returns up to topK entries ranked best-first.
func (s *Store) Search(queryEmbedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.flat.Search(queryEmbedding, topK)
	if err != nil {
		return nil, wrapError("Search", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			Entry: s.entries[h.Row],
			Score: 1 / (1 + h.Distance),
		}
	}
	return results, nil
}

// Count returns the number of stored entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimensions returns the established embedding dimensionality (0 if empty).
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flat.Dimensions()
}

// Reset clears all entries and the persisted state.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flat = NewFlat(0)
	s.entries = nil

	if err := s.persist(); err != nil {
		return wrapError("Reset.persist", err)
	}
	return nil
}
