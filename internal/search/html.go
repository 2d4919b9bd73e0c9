package search

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/types"
)

// HTMLLister scrapes a rendered search results page with CSS selectors.
// It pairs well with the browser fetcher for pages that need JavaScript.
type HTMLLister struct {
	cfg     *config.SearchConfig
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewHTMLLister creates a results-page lister.
func NewHTMLLister(cfg *config.SearchConfig, f fetcher.Fetcher, logger *slog.Logger) *HTMLLister {
	return &HTMLLister{
		cfg:     cfg,
		fetcher: f,
		logger:  logger.With("component", "html_lister"),
	}
}

// Name implements Lister.
func (l *HTMLLister) Name() string { return "html" }

// Search implements Lister. Relative links are resolved against the
// results page. Blocks with neither a title nor a usable link are skipped.
func (l *HTMLLister) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	searchURL, err := buildSearchURL(l.cfg, query)
	if err != nil {
		return nil, err
	}

	resp, err := fetcher.FetchURL(ctx, l.fetcher, searchURL, "search")
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: searchURL, Err: err}
	}

	base, _ := url.Parse(resp.FinalURL)
	sel := l.cfg.HTML

	var results []types.SearchResult
	doc.Find(sel.ResultSelector).Each(func(_ int, s *goquery.Selection) {
		var link string
		if href, ok := s.Find(sel.LinkSelector).First().Attr("href"); ok {
			link = resolveLink(base, href)
		}

		title := strings.TrimSpace(s.Find(sel.TitleSelector).First().Text())
		if title == "" {
			title = strings.TrimSpace(s.Find(sel.LinkSelector).First().Text())
		}
		if title == "" && link == "" {
			return
		}

		dateNode := s.Find(sel.DateSelector).First()
		rawDate := strings.TrimSpace(dateNode.Text())
		if rawDate == "" {
			rawDate = dateNode.AttrOr("datetime", "")
		}

		results = append(results, types.SearchResult{
			Title:   title,
			Link:    link,
			RawDate: rawDate,
		})
	})

	results = capResults(results, l.cfg.MaxResults)
	l.logger.Info("search complete", "query", query, "results", len(results))
	return results, nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Fragment = ""
	return ref.String()
}
