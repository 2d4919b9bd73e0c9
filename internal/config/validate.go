package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeout_seconds must be > 0, got %d", cfg.Fetcher.TimeoutSeconds)
	}
	if cfg.Fetcher.Delay < 0 {
		return fmt.Errorf("fetcher.delay must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if strings.TrimSpace(cfg.Fetcher.UserAgent) == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	if cfg.Proxy.Enabled {
		if cfg.Proxy.Rotation != "round_robin" && cfg.Proxy.Rotation != "random" {
			return fmt.Errorf("proxy.rotation must be 'round_robin' or 'random', got %q", cfg.Proxy.Rotation)
		}
		for _, proxyURL := range cfg.Proxy.URLs {
			if _, err := url.Parse(proxyURL); err != nil {
				return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
			}
		}
	}

	switch cfg.Search.Provider {
	case "rss", "html":
	default:
		return fmt.Errorf("search.provider must be 'rss' or 'html', got %q", cfg.Search.Provider)
	}
	if err := ValidateURL(cfg.Search.Endpoint); err != nil {
		return fmt.Errorf("search.endpoint: %w", err)
	}
	if cfg.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be >= 0, got %d", cfg.Search.MaxResults)
	}

	for i, sel := range cfg.Extract.Containers {
		if sel.Tag == "" || sel.Class == "" {
			return fmt.Errorf("extract.containers[%d] needs both tag and class", i)
		}
	}

	if cfg.Pipeline.MaxContentChars < 0 {
		return fmt.Errorf("pipeline.max_content_chars must be >= 0")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	for _, kind := range strings.Split(cfg.Storage.Type, ",") {
		kind = strings.TrimSpace(kind)
		if !validStorageTypes[kind] {
			return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", kind)
		}
		if kind != "mongodb" && cfg.Storage.OutputPath == "" {
			return fmt.Errorf("storage.output_path must be set for %s output", kind)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
