package search

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"Eternal stock market" - Google News</title>
  <item>
    <title>Eternal shares jump after results - Example Times</title>
    <link>https://news.example.com/eternal-results</link>
    <pubDate>Mon, 04 Mar 2024 08:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Quick commerce drives growth</title>
    <link>https://news.example.com/quick-commerce</link>
    <pubDate>Sun, 03 Mar 2024 10:15:00 GMT</pubDate>
  </item>
  <item>
    <title>No link here</title>
  </item>
  <item>
    <description>neither title nor link</description>
  </item>
</channel>
</rss>`

func newServer(t *testing.T, contentType, body string, gotQuery *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query()
		}
		w.Header().Set("Content-Type", contentType)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T) fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRSSListerSearch(t *testing.T) {
	var query url.Values
	srv := newServer(t, "application/rss+xml", testFeed, &query)

	cfg := config.DefaultConfig().Search
	cfg.Endpoint = srv.URL + "/rss/search"

	l := NewRSSLister(&cfg, newFetcher(t), testLogger())
	got, err := l.Search(context.Background(), "Eternal stock market")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []types.SearchResult{
		{
			Title:   "Eternal shares jump after results - Example Times",
			Link:    "https://news.example.com/eternal-results",
			RawDate: "Mon, 04 Mar 2024 08:00:00 GMT",
		},
		{
			Title:   "Quick commerce drives growth",
			Link:    "https://news.example.com/quick-commerce",
			RawDate: "Sun, 03 Mar 2024 10:15:00 GMT",
		},
		{Title: "No link here"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	if q := query.Get("q"); q != "Eternal stock market when:7d" {
		t.Errorf("q = %q", q)
	}
	if hl := query.Get("hl"); hl != "en-IN" {
		t.Errorf("hl = %q", hl)
	}
	if ceid := query.Get("ceid"); ceid != "IN:en" {
		t.Errorf("ceid = %q", ceid)
	}
}

func TestRSSListerMaxResults(t *testing.T) {
	srv := newServer(t, "application/rss+xml", testFeed, nil)

	cfg := config.DefaultConfig().Search
	cfg.Endpoint = srv.URL
	cfg.MaxResults = 1

	got, err := NewRSSLister(&cfg, newFetcher(t), testLogger()).Search(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 result, got %d", len(got))
	}
}

func TestRSSListerZeroResults(t *testing.T) {
	srv := newServer(t, "application/rss+xml",
		`<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`, nil)

	cfg := config.DefaultConfig().Search
	cfg.Endpoint = srv.URL

	got, err := NewRSSLister(&cfg, newFetcher(t), testLogger()).Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestRSSListerBadFeed(t *testing.T) {
	srv := newServer(t, "text/plain", "this is not a feed", nil)

	cfg := config.DefaultConfig().Search
	cfg.Endpoint = srv.URL

	_, err := NewRSSLister(&cfg, newFetcher(t), testLogger()).Search(context.Background(), "x")
	if err == nil {
		t.Error("expected parse error")
	}
}

const testResultsPage = `<html><body>
<main>
  <article>
    <h4>Eternal posts record quarter</h4>
    <a href="./articles/abc123">open</a>
    <time datetime="2024-03-04T08:00:00Z">2 days ago</time>
  </article>
  <article>
    <a href="https://news.example.com/b">Blinkit expansion continues</a>
    <time datetime="2024-03-01T08:00:00Z"></time>
  </article>
  <article>
    <h4>Missing link</h4>
  </article>
  <article>
    <a href="#">   </a>
  </article>
</main>
</body></html>`

func TestHTMLListerSearch(t *testing.T) {
	srv := newServer(t, "text/html", testResultsPage, nil)

	cfg := config.DefaultConfig().Search
	cfg.Provider = "html"
	cfg.Endpoint = srv.URL + "/search"

	l, err := New(&cfg, newFetcher(t), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Search(context.Background(), "Eternal")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []types.SearchResult{
		{Title: "Eternal posts record quarter", Link: srv.URL + "/articles/abc123", RawDate: "2 days ago"},
		{Title: "Blinkit expansion continues", Link: "https://news.example.com/b", RawDate: "2024-03-01T08:00:00Z"},
		{Title: "Missing link"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig().Search
	cfg.Provider = "altavista"
	if _, err := New(&cfg, nil, testLogger()); err == nil {
		t.Error("expected error")
	}
}

func TestBuildSearchURLWithoutLocale(t *testing.T) {
	cfg := &config.SearchConfig{Endpoint: "https://example.com/search?src=cli"}
	got, err := buildSearchURL(cfg, " acme ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/search?q=acme&src=cli" {
		t.Errorf("got %q", got)
	}
}
