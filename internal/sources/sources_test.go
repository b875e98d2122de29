package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/chunker"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/embedder"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/scrape"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
sources:
  - id: tenancy-guide
    url: https://example.com/tenancy
    title: Tenancy Guide
    jurisdiction: cameroon
  - id: statutes
    path: /data/statutes.txt
    metadata:
      tags: statute
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "tenancy-guide", m.Sources[0].ID)
	assert.Equal(t, "https://example.com/tenancy", m.Sources[0].URL)
	assert.Equal(t, "cameroon", m.Sources[0].Jurisdiction)
	assert.Equal(t, "statute", m.Sources[1].Metadata["tags"])
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing id", "sources:\n  - url: https://example.com\n"},
		{"duplicate id", "sources:\n  - id: a\n    url: https://example.com\n  - id: a\n    path: /x\n"},
		{"both url and path", "sources:\n  - id: a\n    url: https://example.com\n    path: /x\n"},
		{"neither url nor path", "sources:\n  - id: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(writeManifest(t, tt.manifest))
			assert.Error(t, err)
		})
	}
}

func newTestLoader(t *testing.T, client *http.Client) (*Loader, *rag.Service, string) {
	t.Helper()
	store, err := vector.Open(t.TempDir(), "sources")
	require.NoError(t, err)
	service := rag.NewService(store, embedder.NewHash(64))
	ingestor := rag.NewIngestor(service, chunker.NewSentence(200, 500, 0.1))
	statePath := filepath.Join(t.TempDir(), "sync-state.json")
	return NewLoader(ingestor, scrape.New(client), statePath), service, statePath
}

func TestLoader_SyncWebSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Guide</title></head><body><main><p>Landlords must serve notice.</p></main></body></html>"))
	}))
	defer server.Close()

	loader, service, _ := newTestLoader(t, server.Client())
	manifest := &Manifest{Sources: []Source{{ID: "guide", URL: server.URL}}}

	summary, err := loader.Sync(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, service.Store().Count())
}

func TestLoader_SyncFileSource(t *testing.T) {
	loader, service, _ := newTestLoader(t, nil)

	docPath := filepath.Join(t.TempDir(), "statute.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("Every tenancy agreement must be in writing."), 0o644))

	summary, err := loader.Sync(context.Background(), &Manifest{
		Sources: []Source{{ID: "statute", Path: docPath, Title: "Statute"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, service.Store().Count())
}

func TestLoader_SkipsUnchangedContent(t *testing.T) {
	loader, service, _ := newTestLoader(t, nil)

	docPath := filepath.Join(t.TempDir(), "statute.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("Every tenancy agreement must be in writing."), 0o644))
	manifest := &Manifest{Sources: []Source{{ID: "statute", Path: docPath}}}

	first, err := loader.Sync(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Ingested)

	second, err := loader.Sync(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Ingested)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, service.Store().Count(), "unchanged source must not duplicate entries")
}

func TestLoader_StateSurvivesRestart(t *testing.T) {
	store, err := vector.Open(t.TempDir(), "sources")
	require.NoError(t, err)
	service := rag.NewService(store, embedder.NewHash(64))
	ingestor := rag.NewIngestor(service, chunker.NewSentence(200, 500, 0.1))
	statePath := filepath.Join(t.TempDir(), "sync-state.json")

	docPath := filepath.Join(t.TempDir(), "statute.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("Every tenancy agreement must be in writing."), 0o644))
	manifest := &Manifest{Sources: []Source{{ID: "statute", Path: docPath}}}

	first := NewLoader(ingestor, scrape.New(nil), statePath)
	_, err = first.Sync(context.Background(), manifest)
	require.NoError(t, err)

	second := NewLoader(ingestor, scrape.New(nil), statePath)
	summary, err := second.Sync(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
}

func TestLoader_FailedSourceDoesNotAbort(t *testing.T) {
	loader, service, _ := newTestLoader(t, nil)

	docPath := filepath.Join(t.TempDir(), "ok.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("A valid statute about deposits."), 0o644))

	summary, err := loader.Sync(context.Background(), &Manifest{
		Sources: []Source{
			{ID: "missing", Path: "/no/such/file.txt"},
			{ID: "ok", Path: docPath},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, service.Store().Count())
}
