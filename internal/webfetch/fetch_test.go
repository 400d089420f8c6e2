package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Sample</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <nav>Home About Contact</nav>
  <header>Site Header</header>
  <h1>Article   Title</h1>
  <p>First paragraph
  of the article.</p>
  <p>Second paragraph.</p>
  <footer>Copyright 2026</footer>
  <noscript>Enable JS</noscript>
</body>
</html>`

func TestFetchTextStripsChrome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "llm-quorum/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	text, err := NewFetcher().FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}

	want := "Article Title First paragraph of the article. Second paragraph."
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	for _, gone := range []string{"console.log", "color: red", "Site Header", "Copyright", "Enable JS", "Home About"} {
		if strings.Contains(text, gone) {
			t.Errorf("text still contains stripped content %q", gone)
		}
	}
}

func TestFetchTextNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := NewFetcher().FetchText(context.Background(), server.URL); err == nil {
		t.Error("FetchText succeeded on 404, want error")
	}
}

func TestFetchTextConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	if _, err := NewFetcher().FetchText(context.Background(), server.URL); err == nil {
		t.Error("FetchText succeeded against closed server, want error")
	}
}

func TestFetchTextTruncatesLongPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + strings.Repeat("word ", 50000) + "</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher()
	text, err := fetcher.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if len(text) > fetcher.maxBytes {
		t.Errorf("text is %d bytes, cap is %d", len(text), fetcher.maxBytes)
	}
}
