package marketdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, endpoint, key string) *Client {
	t.Helper()
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	c, err := NewClient(&config.SourceConfig{Endpoint: endpoint, APIKey: key}, f, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestQuoteSendsKeyAndName(t *testing.T) {
	var gotKey, gotName, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotName = r.URL.Query().Get("name")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"companyName":"Eternal Ltd","currentPrice":{"NSE":"245.10"}}`)
	}))
	defer srv.Close()

	raw, err := newClient(t, srv.URL, "test-key").Quote(context.Background(), "Eternal")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if gotKey != "test-key" || gotName != "Eternal" || gotPath != "/stock" {
		t.Errorf("request: key=%q name=%q path=%q", gotKey, gotName, gotPath)
	}
	if string(raw) != `{"companyName":"Eternal Ltd","currentPrice":{"NSE":"245.10"}}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestGetRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "k").Quote(context.Background(), "Eternal")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestGetUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "bad").Quote(context.Background(), "Eternal")
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 FetchError, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(&config.SourceConfig{Endpoint: "https://stock.indianapi.in"}, nil, testLogger())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSaveIndents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock_data.json")
	if err := Save(path, []byte(`{"a":1,"b":[true]}`)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"a\": 1,\n    \"b\": [\n        true\n    ]\n}\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}
