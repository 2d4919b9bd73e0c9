package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/dates"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/parser"
	"github.com/IshaanNene/stocknews/internal/pipeline"
	"github.com/IshaanNene/stocknews/internal/search"
	"github.com/IshaanNene/stocknews/internal/types"
)

// Stats tracks run statistics.
type Stats struct {
	Results         atomic.Int64
	Fetched         atomic.Int64
	FetchFailed     atomic.Int64
	ItemsOK         atomic.Int64
	ItemsEmpty      atomic.Int64
	ItemsFailed     atomic.Int64
	Panics          atomic.Int64
	BytesDownloaded atomic.Int64
	StartTime       time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"results":          s.Results.Load(),
		"fetched":          s.Fetched.Load(),
		"fetch_failed":     s.FetchFailed.Load(),
		"items_ok":         s.ItemsOK.Load(),
		"items_empty":      s.ItemsEmpty.Load(),
		"items_failed":     s.ItemsFailed.Load(),
		"panics":           s.Panics.Load(),
		"bytes_downloaded": s.BytesDownloaded.Load(),
		"elapsed":          time.Since(s.StartTime).Round(time.Millisecond).String(),
	}
}

// ProgressFunc is called after each item is processed.
type ProgressFunc func(index, total int, result types.ItemResult)

// Engine runs the sequential news pipeline: search, then for each result
// fetch, extract, normalize the date, and post-process.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	lister     search.Lister
	fetcher    fetcher.Fetcher
	extractor  *parser.Extractor
	normalizer *dates.Normalizer
	pipeline   *pipeline.Pipeline
	delay      time.Duration
	lastFetch  time.Time
	progress   ProgressFunc
	stats      *Stats
	runID      string
	ownFetcher bool
}

// Option overrides an engine component.
type Option func(*Engine)

// WithFetcher replaces the fetcher built from configuration. The caller
// keeps ownership and must close it.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithLister replaces the search lister built from configuration.
func WithLister(l search.Lister) Option {
	return func(e *Engine) { e.lister = l }
}

// WithNormalizer replaces the date normalizer.
func WithNormalizer(n *dates.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithProgress registers a per-item progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// New wires an Engine from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	runID := uuid.NewString()
	e := &Engine{
		cfg:    cfg,
		runID:  runID,
		logger: logger.With("component", "engine", "run_id", runID),
		stats:  &Stats{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.fetcher == nil {
		f, err := fetcher.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create fetcher: %w", err)
		}
		e.fetcher = f
		e.ownFetcher = true
	}

	if e.lister == nil {
		l, err := search.New(&cfg.Search, e.fetcher, logger)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.lister = l
	}

	extractor, err := parser.NewExtractorFromConfig(&cfg.Extract, logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.extractor = extractor

	if e.normalizer == nil {
		e.normalizer = dates.NewNormalizer(
			dates.WithCalendarRollover(cfg.Dates.CalendarRollover),
			dates.WithLogger(logger),
		)
	}

	e.pipeline = pipeline.FromConfig(&cfg.Pipeline, logger)
	e.delay = cfg.Fetcher.Delay

	return e, nil
}

// RunID returns the identifier attached to this engine's log lines.
func (e *Engine) RunID() string { return e.runID }

// Stats returns the live run statistics.
func (e *Engine) Stats() *Stats { return e.stats }

// Close releases the fetcher if the engine created it.
func (e *Engine) Close() error {
	if e.ownFetcher && e.fetcher != nil {
		return e.fetcher.Close()
	}
	return nil
}

// Run searches for query and processes every result in search order.
// Per-item failures are recorded in the returned results and never abort
// the run. An error is returned only when the search itself fails or ctx
// is cancelled, in which case no results are returned.
func (e *Engine) Run(ctx context.Context, query string) ([]types.ItemResult, error) {
	e.stats.StartTime = time.Now()
	e.lastFetch = time.Time{}
	e.logger.Info("run starting", "query", query, "search", e.lister.Name(), "fetcher", e.fetcher.Type())

	found, err := e.lister.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	e.stats.Results.Store(int64(len(found)))

	results := make([]types.ItemResult, 0, len(found))
	if len(found) == 0 {
		e.logger.Info("no search results", "query", query)
		return results, nil
	}

	for i, sr := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := e.processItem(ctx, sr)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch res.Outcome() {
		case types.OutcomeOK:
			e.stats.ItemsOK.Add(1)
		case types.OutcomeEmpty:
			e.stats.ItemsEmpty.Add(1)
		case types.OutcomeFailed:
			e.stats.ItemsFailed.Add(1)
			e.logger.Warn("item failed", "title", res.Item.Title, "link", res.Item.Link, "error", res.Err)
		}

		results = append(results, res)
		if e.progress != nil {
			e.progress(i, len(found), res)
		}
	}

	e.logger.Info("run complete", "items", len(results), "stats", e.stats.Snapshot())
	return results, nil
}

// processItem builds one NewsItem. A panic anywhere in the item's
// processing is recovered into a failed result.
func (e *Engine) processItem(ctx context.Context, sr types.SearchResult) (res types.ItemResult) {
	title := sr.Title
	if title == "" {
		title = "No title"
	}
	res.Item = types.NewsItem{Title: title, Link: sr.Link}

	defer func() {
		if r := recover(); r != nil {
			e.stats.Panics.Add(1)
			if res.Item.Date == "" {
				res.Item.Date = e.today()
			}
			res.Item.Content = ""
			res.Err = fmt.Errorf("%w: %v", types.ErrItemPanic, r)
		}
	}()

	res.Item.Date = e.normalizer.Normalize(sr.RawDate)

	if sr.Link != "" {
		content, err := e.fetchContent(ctx, sr.Link)
		if err != nil {
			res.Err = err
		}
		res.Item.Content = content
	}

	if err := e.pipeline.Process(&res.Item); err != nil && res.Err == nil {
		res.Err = err
	}
	return res
}

// fetchContent waits out the delay since the previous fetch finished,
// fetches the article, and extracts its text.
func (e *Engine) fetchContent(ctx context.Context, link string) (string, error) {
	if err := e.pause(ctx); err != nil {
		return "", err
	}

	e.logger.Debug("fetching article", "link", link)
	resp, err := fetcher.FetchURL(ctx, e.fetcher, link, "article")
	e.lastFetch = time.Now()
	if err != nil {
		e.stats.FetchFailed.Add(1)
		return "", err
	}
	e.stats.Fetched.Add(1)
	e.stats.BytesDownloaded.Add(int64(len(resp.Body)))

	return e.extractor.ExtractHTML(resp.Body, resp.FinalURL), nil
}

// pause sleeps for the configured delay between the end of the previous
// article fetch and the start of the next one. The first fetch of a run
// starts immediately.
func (e *Engine) pause(ctx context.Context) error {
	if e.delay <= 0 || e.lastFetch.IsZero() {
		return ctx.Err()
	}
	wait := e.delay - time.Since(e.lastFetch)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// today formats the current date for items whose date could not be built.
func (e *Engine) today() string {
	return time.Now().Format(types.DateLayout)
}
