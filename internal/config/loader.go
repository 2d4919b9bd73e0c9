package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller on top of the result.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("STOCKNEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("stocknews")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".stocknews"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so that every key is
// visible to AutomaticEnv.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.timeout_seconds", cfg.Fetcher.TimeoutSeconds)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.delay", cfg.Fetcher.Delay)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.respect_robots_txt", cfg.Fetcher.RespectRobotsTxt)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)

	v.SetDefault("proxy.enabled", cfg.Proxy.Enabled)
	v.SetDefault("proxy.rotation", cfg.Proxy.Rotation)

	v.SetDefault("search.provider", cfg.Search.Provider)
	v.SetDefault("search.endpoint", cfg.Search.Endpoint)
	v.SetDefault("search.query", cfg.Search.Query)
	v.SetDefault("search.language", cfg.Search.Language)
	v.SetDefault("search.region", cfg.Search.Region)
	v.SetDefault("search.period", cfg.Search.Period)
	v.SetDefault("search.max_results", cfg.Search.MaxResults)
	v.SetDefault("search.html.result_selector", cfg.Search.HTML.ResultSelector)
	v.SetDefault("search.html.title_selector", cfg.Search.HTML.TitleSelector)
	v.SetDefault("search.html.link_selector", cfg.Search.HTML.LinkSelector)
	v.SetDefault("search.html.date_selector", cfg.Search.HTML.DateSelector)

	v.SetDefault("extract.json_ld", cfg.Extract.JSONLD)
	v.SetDefault("extract.readability", cfg.Extract.Readability)

	v.SetDefault("dates.calendar_rollover", cfg.Dates.CalendarRollover)

	v.SetDefault("pipeline.sanitize_titles", cfg.Pipeline.SanitizeTitles)
	v.SetDefault("pipeline.max_content_chars", cfg.Pipeline.MaxContentChars)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo.uri", cfg.Storage.Mongo.URI)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)
	v.SetDefault("storage.mongo.collection", cfg.Storage.Mongo.Collection)

	v.SetDefault("source.endpoint", cfg.Source.Endpoint)
	v.SetDefault("source.api_key", cfg.Source.APIKey)
	v.SetDefault("source.output_path", cfg.Source.OutputPath)

	v.SetDefault("finance.quote_url", cfg.Finance.QuoteURL)
	v.SetDefault("finance.snapshot_dir", cfg.Finance.SnapshotDir)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
}
