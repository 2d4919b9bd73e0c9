// Package search lists news results for a query from an aggregator,
// either through its RSS search feed or by scraping its HTML results page.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/types"
)

// Lister returns search results in the order the service ranked them.
type Lister interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
	Name() string
}

// New builds the lister selected by cfg.Provider. Pages are fetched
// through f.
func New(cfg *config.SearchConfig, f fetcher.Fetcher, logger *slog.Logger) (Lister, error) {
	switch cfg.Provider {
	case "", "rss":
		return NewRSSLister(cfg, f, logger), nil
	case "html":
		return NewHTMLLister(cfg, f, logger), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// buildSearchURL appends the Google News style query parameters to the
// endpoint. The period is expressed as a "when:" operator inside q.
func buildSearchURL(cfg *config.SearchConfig, query string) (string, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", types.ErrInvalidURL, cfg.Endpoint, err)
	}

	q := strings.TrimSpace(query)
	if cfg.Period != "" {
		q += " when:" + cfg.Period
	}

	params := u.Query()
	params.Set("q", q)
	if cfg.Language != "" {
		hl := cfg.Language
		if cfg.Region != "" {
			hl += "-" + cfg.Region
			params.Set("gl", cfg.Region)
			params.Set("ceid", cfg.Region+":"+cfg.Language)
		}
		params.Set("hl", hl)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// capResults applies the optional local cap. Zero means unlimited.
func capResults(results []types.SearchResult, max int) []types.SearchResult {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
