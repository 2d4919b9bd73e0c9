package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const quotePage = `<html><body>
<div class="eYanAe">
  <div class="gyFHrc"><span><div class="mfs7Fc">Previous close</div></span><div class="P6K39c">₹245.10</div></div>
  <div class="gyFHrc"><span><div class="mfs7Fc">Market cap</div></span><div class="P6K39c">2.21T INR</div></div>
  <div class="gyFHrc"><span><div class="mfs7Fc">Avg Volume</div></span><div class="P6K39c">48.71M</div></div>
</div>
<table>
  <tr><td><div class="QXDnM">Revenue 54.05B</div></td><td><div class="QXDnM">Dec 2024 Q3</div></td></tr>
  <tr><td><div class="QXDnM">Revenue 202.43B</div></td><td><div class="QXDnM">2024</div></td></tr>
</table>
</body></html>`

func TestParseMetrics(t *testing.T) {
	root, err := htmlquery.Parse(strings.NewReader(quotePage))
	if err != nil {
		t.Fatal(err)
	}
	got := ParseMetrics(root)

	want := Metrics{
		MarketCap:     "2.21T INR",
		AverageVolume: "48.71M",
		Revenue: Revenue{
			Quarterly: []RevenueEntry{{Period: "Dec 2024 Q3", Value: "Revenue 54.05B"}},
			Annual:    []RevenueEntry{{Period: "2024", Value: "Revenue 202.43B"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMetricsEmptyPage(t *testing.T) {
	root, _ := htmlquery.Parse(strings.NewReader("<html><body><p>consent wall</p></body></html>"))
	got := ParseMetrics(root)
	if got.MarketCap != "" || got.AverageVolume != "" || len(got.Revenue.Quarterly)+len(got.Revenue.Annual) != 0 {
		t.Errorf("expected no metrics, got %+v", got)
	}
}

func TestScraperMetricsWithSnapshot(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, quotePage)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := &config.FinanceConfig{QuoteURL: srv.URL + "/finance/quote/%s", SnapshotDir: dir}
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s := NewScraper(cfg, f, testLogger())
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 5, 7, 0, time.UTC) }

	m, err := s.Metrics(context.Background(), "ETERNAL:NSE")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if gotPath != "/finance/quote/ETERNAL:NSE" {
		t.Errorf("requested path %q", gotPath)
	}
	if m.MarketCap != "2.21T INR" || m.Symbol != "ETERNAL:NSE" {
		t.Errorf("unexpected metrics %+v", m)
	}

	wantSnap := filepath.Join(dir, "eternal_finance_20250314_090507.html")
	if m.SnapshotPath != wantSnap {
		t.Errorf("snapshot path = %q, want %q", m.SnapshotPath, wantSnap)
	}
	data, err := os.ReadFile(wantSnap)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("2.21T INR")) {
		t.Error("snapshot does not contain the page")
	}
}

func TestQuoteURL(t *testing.T) {
	tests := []struct{ template, symbol, want string }{
		{"https://www.google.com/finance/quote/%s", "ETERNAL:NSE", "https://www.google.com/finance/quote/ETERNAL:NSE"},
		{"https://quotes.example.com/", "ACME", "https://quotes.example.com/ACME"},
	}
	for _, tt := range tests {
		if got := QuoteURL(tt.template, tt.symbol); got != tt.want {
			t.Errorf("QuoteURL(%q, %q) = %q, want %q", tt.template, tt.symbol, got, tt.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	m := &Metrics{
		Symbol:    "ETERNAL:NSE",
		MarketCap: "2.21T INR",
		Revenue:   Revenue{Quarterly: []RevenueEntry{{Period: "Q3", Value: "54B"}}},
	}
	var buf bytes.Buffer
	m.Display(&buf)
	out := buf.String()
	for _, want := range []string{"Market Cap: 2.21T INR", "Average Trading Volume: N/A", "Q3: 54B"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsJSONOmitsSnapshotPath(t *testing.T) {
	data, err := json.Marshal(Metrics{Symbol: "X", SnapshotPath: "/tmp/x.html"})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("x.html")) {
		t.Errorf("snapshot path leaked into JSON: %s", data)
	}
}
