// Package webfetch pulls a web page and reduces it to readable text, so page
// content can be pasted into a council query as context.
package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 100 * 1024
	userAgent       = "llm-quorum/1.0"
)

// Fetcher retrieves pages over HTTP and extracts their body text.
type Fetcher struct {
	client   *http.Client
	maxBytes int
}

// NewFetcher returns a fetcher with a 30s per-request timeout and a 100 KiB
// cap on extracted text.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		maxBytes: defaultMaxBytes,
	}
}

// FetchText GETs the URL and returns the page's visible text with scripts,
// styles and chrome stripped and whitespace collapsed. Text longer than the
// cap is truncated.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %q: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", url, err)
	}

	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	text := doc.Find("body").Text()
	text = collapseWhitespace(text)
	if len(text) > f.maxBytes {
		text = text[:f.maxBytes]
	}
	return text, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
