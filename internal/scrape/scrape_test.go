package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Tenancy Law Guide</title><style>body { color: red }</style></head>
<body>
  <nav>Home | About</nav>
  <main>
    <h1>Eviction notice periods</h1>
    <p>A landlord must give written notice before eviction.</p>
    <script>trackPageView()</script>
  </main>
  <footer>Copyright 2026</footer>
</body>
</html>`

func TestScraper_Fetch_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	s := New(server.Client())
	page, err := s.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Tenancy Law Guide", page.Title)
	assert.Contains(t, page.Text, "Eviction notice periods")
	assert.Contains(t, page.Text, "written notice before eviction")
	assert.NotContains(t, page.Text, "trackPageView", "scripts must be stripped")
	assert.NotContains(t, page.Text, "Copyright", "footer boilerplate must be stripped")
	assert.NotContains(t, page.Text, "Home | About", "nav boilerplate must be stripped")
}

func TestScraper_Fetch_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  raw   statute text  \n"))
	}))
	defer server.Close()

	s := New(server.Client())
	page, err := s.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "raw statute text", page.Text)
	assert.Empty(t, page.Title)
}

func TestScraper_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := New(server.Client())
	_, err := s.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 404")
}

func TestScraper_Fetch_UnsupportedScheme(t *testing.T) {
	s := New(nil)
	_, err := s.Fetch(context.Background(), "ftp://example.com/docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported URL scheme")
}

func TestScraper_Fetch_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x00, 0x01})
	}))
	defer server.Close()

	s := New(server.Client())
	_, err := s.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestScraper_ClipsLongPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", defaultMaxChars+500)))
	}))
	defer server.Close()

	s := New(server.Client())
	page, err := s.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, page.Text, defaultMaxChars)
}
