package search

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/types"
)

// RSSLister reads results from an RSS/Atom search feed such as
// https://news.google.com/rss/search.
type RSSLister struct {
	cfg     *config.SearchConfig
	fetcher fetcher.Fetcher
	parser  *gofeed.Parser
	logger  *slog.Logger
}

// NewRSSLister creates a feed-backed lister.
func NewRSSLister(cfg *config.SearchConfig, f fetcher.Fetcher, logger *slog.Logger) *RSSLister {
	return &RSSLister{
		cfg:     cfg,
		fetcher: f,
		parser:  gofeed.NewParser(),
		logger:  logger.With("component", "rss_lister"),
	}
}

// Name implements Lister.
func (l *RSSLister) Name() string { return "rss" }

// Search implements Lister. The raw date is the item's published string
// exactly as the feed carries it. Items without a link are kept; only
// items with neither title nor link are dropped.
func (l *RSSLister) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	searchURL, err := buildSearchURL(l.cfg, query)
	if err != nil {
		return nil, err
	}

	resp, err := fetcher.FetchURL(ctx, l.fetcher, searchURL, "search")
	if err != nil {
		return nil, err
	}

	feed, err := l.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: searchURL, Err: fmt.Errorf("parse feed: %w", err)}
	}

	results := make([]types.SearchResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" && link == "" {
			continue
		}
		rawDate := item.Published
		if rawDate == "" {
			rawDate = item.Updated
		}
		results = append(results, types.SearchResult{
			Title:   title,
			Link:    link,
			RawDate: rawDate,
		})
	}

	results = capResults(results, l.cfg.MaxResults)
	l.logger.Info("search complete", "query", query, "results", len(results))
	return results, nil
}
