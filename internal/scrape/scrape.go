// Package scrape fetches web pages and reduces them to indexable text.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultUserAgent = "LegalHub/1.0 (Document Fetcher)"
	defaultMaxChars  = 200000
)

// Page is the readable content of one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Scraper fetches pages over HTTP and strips them down to title and body
// text.
type Scraper struct {
	httpClient *http.Client
	maxChars   int
}

// New creates a scraper. client may be nil, in which case a 30s-timeout
// default is used.
func New(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{
		httpClient: client,
		maxChars:   defaultMaxChars,
	}
}

// Fetch retrieves one URL and extracts its readable content.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "text/html"):
		return s.extractPage(rawURL, string(body))
	case strings.Contains(contentType, "text/"):
		return &Page{URL: rawURL, Text: s.clip(cleanContent(string(body)))}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// extractPage strips boilerplate from an HTML document.
func (s *Scraper) extractPage(rawURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, aside, .ad, .advertisement, .sidebar").Remove()

	title := strings.TrimSpace(doc.Find("title").Text())

	// Prefer a main content region over the whole body.
	main := doc.Find("body")
	for _, selector := range []string{"main", "article", ".content", "#content", "#main"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}

	text := cleanContent(main.Text())
	return &Page{URL: rawURL, Title: title, Text: s.clip(text)}, nil
}

func (s *Scraper) clip(text string) string {
	if len(text) > s.maxChars {
		return text[:s.maxChars]
	}
	return text
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// cleanContent collapses whitespace runs left over from HTML stripping.
func cleanContent(content string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(content, " "))
}
