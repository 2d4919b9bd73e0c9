// Package stocknews provides a public SDK for embedding the news pipeline
// as a library.
//
// Example usage:
//
//	s := stocknews.New(
//	    stocknews.WithDelay(time.Second),
//	    stocknews.WithMaxResults(20),
//	    stocknews.WithOutput("json", "eternal_stock_news.json"),
//	)
//
//	s.OnItem(func(r stocknews.Result) {
//	    fmt.Println(r.Item.Date, r.Item.Title)
//	})
//
//	items, err := s.Run(ctx, "Eternal stock market")
package stocknews

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/engine"
	"github.com/IshaanNene/stocknews/internal/storage"
	"github.com/IshaanNene/stocknews/internal/types"
)

// NewsItem is a single normalized news record.
type NewsItem = types.NewsItem

// Result pairs a NewsItem with the reason its content is missing, if any.
type Result = types.ItemResult

// ItemCallback is called after each search result has been processed.
type ItemCallback func(r Result)

// Scraper is the high-level API for using stocknews as a library.
type Scraper struct {
	cfg    *config.Config
	logger *slog.Logger
	onItem []ItemCallback
	save   bool
	stats  map[string]any
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithConfig replaces the default configuration. Options applied after it
// modify the given config.
func WithConfig(cfg *config.Config) Option {
	return func(s *Scraper) { s.cfg = cfg }
}

// WithDelay sets the pause between article fetches.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) { s.cfg.Fetcher.Delay = d }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.cfg.Fetcher.TimeoutSeconds = int(d.Round(time.Second) / time.Second) }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.cfg.Fetcher.UserAgent = ua }
}

// WithMaxResults caps the number of search results processed.
func WithMaxResults(n int) Option {
	return func(s *Scraper) { s.cfg.Search.MaxResults = n }
}

// WithSearch selects the search provider ("rss" or "html") and endpoint.
func WithSearch(provider, endpoint string) Option {
	return func(s *Scraper) {
		s.cfg.Search.Provider = provider
		s.cfg.Search.Endpoint = endpoint
	}
}

// WithPeriod restricts results to a recency window such as "7d".
func WithPeriod(period string) Option {
	return func(s *Scraper) { s.cfg.Search.Period = period }
}

// WithOutput makes Run write its items with the given storage type
// ("json", "jsonl", "csv", "mongodb") and path.
func WithOutput(format, path string) Option {
	return func(s *Scraper) {
		s.cfg.Storage.Type = format
		s.cfg.Storage.OutputPath = path
		s.save = true
	}
}

// WithReadability enables the readability extraction strategy.
func WithReadability() Option {
	return func(s *Scraper) { s.cfg.Extract.Readability = true }
}

// WithBrowser fetches pages with a headless browser instead of plain HTTP.
func WithBrowser(stealth bool) Option {
	return func(s *Scraper) {
		s.cfg.Fetcher.Type = "browser"
		s.cfg.Fetcher.Stealth = stealth
	}
}

// WithProxy enables proxy rotation with the given proxy URLs.
func WithProxy(urls ...string) Option {
	return func(s *Scraper) {
		s.cfg.Proxy.Enabled = true
		s.cfg.Proxy.URLs = urls
	}
}

// WithRobotsRespect enables/disables robots.txt compliance.
func WithRobotsRespect(respect bool) Option {
	return func(s *Scraper) { s.cfg.Fetcher.RespectRobotsTxt = respect }
}

// WithLogger sets the logger. The default logs warnings to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// WithVerbose enables debug-level logging on the default logger.
func WithVerbose() Option {
	return func(s *Scraper) { s.cfg.Logging.Level = "debug" }
}

// New creates a Scraper with the given options.
func New(opts ...Option) *Scraper {
	s := &Scraper{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		level := slog.LevelWarn
		if s.cfg.Logging.Level == "debug" {
			level = slog.LevelDebug
		}
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return s
}

// OnItem registers a callback invoked for every processed result, in
// search order.
func (s *Scraper) OnItem(cb ItemCallback) {
	s.onItem = append(s.onItem, cb)
}

// Run searches for query and returns the items in search order. An empty
// query uses the configured default. When WithOutput was given the items
// are also written to storage.
func (s *Scraper) Run(ctx context.Context, query string) ([]NewsItem, error) {
	if err := config.Validate(s.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if query == "" {
		query = s.cfg.Search.Query
	}

	var opts []engine.Option
	if len(s.onItem) > 0 {
		opts = append(opts, engine.WithProgress(func(_, _ int, r types.ItemResult) {
			for _, cb := range s.onItem {
				cb(r)
			}
		}))
	}

	eng, err := engine.New(s.cfg, s.logger, opts...)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	results, err := eng.Run(ctx, query)
	s.stats = eng.Stats().Snapshot()
	if err != nil {
		return nil, err
	}

	items := types.Items(results)
	if s.save {
		store, err := storage.FromConfig(ctx, &s.cfg.Storage, s.logger)
		if err != nil {
			return items, fmt.Errorf("create storage: %w", err)
		}
		defer store.Close()
		if err := store.Store(ctx, items); err != nil {
			return items, err
		}
	}
	return items, nil
}

// Stats returns the statistics of the last Run.
func (s *Scraper) Stats() map[string]any {
	return s.stats
}
