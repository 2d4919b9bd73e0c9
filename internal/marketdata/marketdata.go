// Package marketdata is a small client for key-authenticated JSON stock
// APIs such as stock.indianapi.in. Responses are passed through as raw
// JSON; callers decide what to keep.
package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/storage"
	"github.com/IshaanNene/stocknews/internal/types"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("marketdata: source.api_key is not set")

// Source returns raw JSON documents from a market-data provider.
type Source interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Client issues GET requests against the configured endpoint with the
// X-Api-Key header.
type Client struct {
	endpoint *url.URL
	apiKey   string
	fetcher  fetcher.Fetcher
	logger   *slog.Logger
}

// NewClient creates a Client. Requests go through f so they share its
// timeout, User-Agent, and proxy settings.
func NewClient(cfg *config.SourceConfig, f fetcher.Fetcher, logger *slog.Logger) (*Client, error) {
	if err := config.ValidateURL(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("source.endpoint: %w", err)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	endpoint, _ := url.Parse(cfg.Endpoint)
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		fetcher:  f,
		logger:   logger.With("component", "marketdata"),
	}, nil
}

// Get fetches path (relative to the endpoint) and returns the body, which
// must be valid JSON.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.endpoint.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := types.NewRequest(u.String())
	if err != nil {
		return nil, err
	}
	req.Tag = "source"
	req.Headers.Set("X-Api-Key", c.apiKey)
	req.Headers.Set("Accept", "application/json")

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if !json.Valid(body) {
		return nil, &types.ParseError{URL: redact(u), Err: errors.New("response is not valid JSON")}
	}

	c.logger.Debug("source response", "path", path, "bytes", len(body))
	return json.RawMessage(body), nil
}

// Quote returns the provider's stock document for a company name.
func (c *Client) Quote(ctx context.Context, name string) (json.RawMessage, error) {
	return c.Get(ctx, "/stock", url.Values{"name": {name}})
}

// Save re-indents raw with four spaces and atomically writes it to path.
func Save(path string, raw json.RawMessage) error {
	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "    "); err != nil {
			return fmt.Errorf("indent JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	})
}

func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}
