// Package finance scrapes headline metrics from a stock quote page:
// market cap, average trading volume, and the revenue figures listed
// in the financials panel.
package finance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/storage"
	"github.com/IshaanNene/stocknews/internal/types"
)

// Value containers on the quote page carry one of these classes.
const containerXPath = `//div[contains(concat(' ', normalize-space(@class), ' '), ' P6K39c ') or contains(concat(' ', normalize-space(@class), ' '), ' QXDnM ')]`

// RevenueEntry is one reported revenue figure and its period label.
type RevenueEntry struct {
	Period string `json:"period"`
	Value  string `json:"value"`
}

// Revenue splits revenue figures by reporting period.
type Revenue struct {
	Quarterly []RevenueEntry `json:"quarterly"`
	Annual    []RevenueEntry `json:"annual"`
}

// Metrics is the result of scraping one quote page.
type Metrics struct {
	Symbol        string    `json:"symbol"`
	MarketCap     string    `json:"market_cap,omitempty"`
	AverageVolume string    `json:"average_trading_volume,omitempty"`
	Revenue       Revenue   `json:"revenue"`
	FetchedAt     time.Time `json:"fetched_at"`

	SnapshotPath string `json:"-"`
}

// Scraper fetches and parses quote pages.
type Scraper struct {
	cfg     *config.FinanceConfig
	fetcher fetcher.Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewScraper creates a Scraper that fetches through f.
func NewScraper(cfg *config.FinanceConfig, f fetcher.Fetcher, logger *slog.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		fetcher: f,
		logger:  logger.With("component", "finance_scraper"),
		now:     time.Now,
	}
}

// Metrics fetches the quote page for symbol (for example "ETERNAL:NSE"),
// optionally snapshots its HTML, and extracts the metrics.
func (s *Scraper) Metrics(ctx context.Context, symbol string) (*Metrics, error) {
	pageURL := QuoteURL(s.cfg.QuoteURL, symbol)

	resp, err := fetcher.FetchURL(ctx, s.fetcher, pageURL, "finance")
	if err != nil {
		return nil, err
	}

	root, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}

	m := ParseMetrics(root)
	m.Symbol = symbol
	m.FetchedAt = s.now()

	if s.cfg.SnapshotDir != "" {
		path, err := s.snapshot(root, symbol, m.FetchedAt)
		if err != nil {
			// A failed snapshot does not invalidate the metrics.
			s.logger.Warn("snapshot failed", "symbol", symbol, "error", err)
		} else {
			m.SnapshotPath = path
		}
	}

	s.logger.Info("metrics scraped",
		"symbol", symbol,
		"market_cap", m.MarketCap,
		"quarterly", len(m.Revenue.Quarterly),
		"annual", len(m.Revenue.Annual),
	)
	return &m, nil
}

// QuoteURL fills the symbol into a quote URL template. Templates without
// a %s verb get the symbol appended as a path segment.
func QuoteURL(template, symbol string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, symbol)
	}
	return strings.TrimRight(template, "/") + "/" + symbol
}

// ParseMetrics extracts metrics from a parsed quote page. Each value
// container is labelled by the nearest div before it; a container whose
// text mentions Revenue takes its period from the next container.
func ParseMetrics(root *html.Node) Metrics {
	var m Metrics
	containers := htmlquery.Find(root, containerXPath)

	for _, c := range containers {
		label := previousDiv(c)
		if label == nil {
			continue
		}
		labelText := strings.TrimSpace(htmlquery.InnerText(label))
		value := strings.TrimSpace(htmlquery.InnerText(c))

		switch {
		case strings.Contains(labelText, "Market cap"):
			m.MarketCap = value
		case strings.Contains(labelText, "Volume"):
			m.AverageVolume = value
		}
	}

	for i, c := range containers {
		value := strings.TrimSpace(htmlquery.InnerText(c))
		if !strings.Contains(value, "Revenue") || i+1 >= len(containers) {
			continue
		}
		period := strings.TrimSpace(htmlquery.InnerText(containers[i+1]))
		entry := RevenueEntry{Period: period, Value: value}
		if strings.Contains(period, "Q") {
			m.Revenue.Quarterly = append(m.Revenue.Quarterly, entry)
		} else {
			m.Revenue.Annual = append(m.Revenue.Annual, entry)
		}
	}

	return m
}

// previousDiv walks backwards in document order, ancestors included, to
// the nearest div that starts before n.
func previousDiv(n *html.Node) *html.Node {
	for cur := prevInDocument(n); cur != nil; cur = prevInDocument(cur) {
		if cur.Type == html.ElementNode && cur.Data == "div" {
			return cur
		}
	}
	return nil
}

func prevInDocument(n *html.Node) *html.Node {
	if n.PrevSibling == nil {
		return n.Parent
	}
	cur := n.PrevSibling
	for cur.LastChild != nil {
		cur = cur.LastChild
	}
	return cur
}

// SnapshotName returns "<company>_finance_<YYYYMMDD_HHMMSS>.html".
func SnapshotName(symbol string, at time.Time) string {
	company, _, _ := strings.Cut(symbol, ":")
	company = strings.ToLower(strings.TrimSpace(company))
	if company == "" {
		company = "quote"
	}
	return fmt.Sprintf("%s_finance_%s.html", company, at.Format("20060102_150405"))
}

func (s *Scraper) snapshot(root *html.Node, symbol string, at time.Time) (string, error) {
	path := filepath.Join(s.cfg.SnapshotDir, SnapshotName(symbol, at))
	err := storage.WriteFileAtomic(path, func(w io.Writer) error {
		return html.Render(w, root)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Display prints the metrics in a human-readable layout.
func (m *Metrics) Display(w io.Writer) {
	fmt.Fprintf(w, "\n=== %s Financial Metrics ===\n\n", m.Symbol)
	fmt.Fprintf(w, "Market Cap: %s\n", orNA(m.MarketCap))
	fmt.Fprintf(w, "Average Trading Volume: %s\n", orNA(m.AverageVolume))

	fmt.Fprintln(w, "\nQuarterly Revenue:")
	for _, e := range m.Revenue.Quarterly {
		fmt.Fprintf(w, "%s: %s\n", e.Period, e.Value)
	}
	fmt.Fprintln(w, "\nAnnual Revenue:")
	for _, e := range m.Revenue.Annual {
		fmt.Fprintf(w, "%s: %s\n", e.Period, e.Value)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
