package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/types"
)

// Middleware post-processes a news item in place.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms the item. Items are never dropped; an error
	// marks the item as failed.
	Process(item *types.NewsItem) error
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds the standard chain: trim, optional title sanitizing,
// optional content limit.
func FromConfig(cfg *config.PipelineConfig, logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(TrimMiddleware{})
	if cfg.SanitizeTitles {
		p.Use(NewTitleSanitizeMiddleware())
	}
	if cfg.MaxContentChars > 0 {
		p.Use(&ContentLimitMiddleware{MaxChars: cfg.MaxContentChars})
	}
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the item through all middleware in order and stops at the
// first failure.
func (p *Pipeline) Process(item *types.NewsItem) error {
	for _, mw := range p.middlewares {
		if err := mw.Process(item); err != nil {
			return &types.PipelineError{
				Stage: mw.Name(),
				Link:  item.Link,
				Err:   err,
			}
		}
	}
	return nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
