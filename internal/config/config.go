package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is the static desktop browser User-Agent sent on every fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config is the root configuration for stocknews.
type Config struct {
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Proxy    ProxyConfig    `mapstructure:"proxy"    yaml:"proxy"`
	Search   SearchConfig   `mapstructure:"search"   yaml:"search"`
	Extract  ExtractConfig  `mapstructure:"extract"  yaml:"extract"`
	Dates    DatesConfig    `mapstructure:"dates"    yaml:"dates"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Source   SourceConfig   `mapstructure:"source"   yaml:"source"`
	Finance  FinanceConfig  `mapstructure:"finance"  yaml:"finance"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type             string        `mapstructure:"type"               yaml:"type"`
	TimeoutSeconds   int           `mapstructure:"timeout_seconds"    yaml:"timeout_seconds"`
	UserAgent        string        `mapstructure:"user_agent"         yaml:"user_agent"`
	Delay            time.Duration `mapstructure:"delay"              yaml:"delay"`
	FollowRedirects  bool          `mapstructure:"follow_redirects"   yaml:"follow_redirects"`
	MaxRedirects     int           `mapstructure:"max_redirects"      yaml:"max_redirects"`
	MaxBodySize      int64         `mapstructure:"max_body_size"      yaml:"max_body_size"`
	TLSInsecure      bool          `mapstructure:"tls_insecure"       yaml:"tls_insecure"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt" yaml:"respect_robots_txt"`
	Stealth          bool          `mapstructure:"stealth"            yaml:"stealth"`
}

// Timeout returns the per-request timeout as a duration.
func (c FetcherConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProxyConfig controls proxy rotation.
type ProxyConfig struct {
	Enabled  bool     `mapstructure:"enabled"  yaml:"enabled"`
	Rotation string   `mapstructure:"rotation" yaml:"rotation"`
	URLs     []string `mapstructure:"urls"     yaml:"urls"`
}

// SearchConfig controls the news search provider.
type SearchConfig struct {
	Provider   string     `mapstructure:"provider"    yaml:"provider"`
	Endpoint   string     `mapstructure:"endpoint"    yaml:"endpoint"`
	Query      string     `mapstructure:"query"       yaml:"query"`
	Language   string     `mapstructure:"language"    yaml:"language"`
	Region     string     `mapstructure:"region"      yaml:"region"`
	Period     string     `mapstructure:"period"      yaml:"period"`
	MaxResults int        `mapstructure:"max_results" yaml:"max_results"`
	HTML       HTMLSearch `mapstructure:"html"        yaml:"html"`
}

// HTMLSearch holds the CSS selectors used to read a search results page.
type HTMLSearch struct {
	ResultSelector string `mapstructure:"result_selector" yaml:"result_selector"`
	TitleSelector  string `mapstructure:"title_selector"  yaml:"title_selector"`
	LinkSelector   string `mapstructure:"link_selector"   yaml:"link_selector"`
	DateSelector   string `mapstructure:"date_selector"   yaml:"date_selector"`
}

// ExtractConfig controls article body extraction.
type ExtractConfig struct {
	Containers  []Selector `mapstructure:"containers"  yaml:"containers"`
	XPath       []string   `mapstructure:"xpath"       yaml:"xpath"`
	JSONLD      bool       `mapstructure:"json_ld"     yaml:"json_ld"`
	Readability bool       `mapstructure:"readability" yaml:"readability"`
}

// Selector is a (tag, class) container selector.
type Selector struct {
	Tag   string `mapstructure:"tag"   yaml:"tag"`
	Class string `mapstructure:"class" yaml:"class"`
}

// DatesConfig controls date normalization.
type DatesConfig struct {
	CalendarRollover bool `mapstructure:"calendar_rollover" yaml:"calendar_rollover"`
}

// PipelineConfig controls the item post-processing chain.
type PipelineConfig struct {
	SanitizeTitles  bool `mapstructure:"sanitize_titles"   yaml:"sanitize_titles"`
	MaxContentChars int  `mapstructure:"max_content_chars" yaml:"max_content_chars"`
}

// StorageConfig controls output.
type StorageConfig struct {
	Type       string       `mapstructure:"type"        yaml:"type"`
	OutputPath string       `mapstructure:"output_path" yaml:"output_path"`
	Mongo      MongoStorage `mapstructure:"mongo"       yaml:"mongo"`
}

// MongoStorage holds the MongoDB connection settings.
type MongoStorage struct {
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// SourceConfig configures the market-data API.
type SourceConfig struct {
	Endpoint   string `mapstructure:"endpoint"    yaml:"endpoint"`
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// FinanceConfig configures the finance quote page scraper.
type FinanceConfig struct {
	QuoteURL    string `mapstructure:"quote_url"    yaml:"quote_url"`
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultContainers is the ordered list of article body containers tried
// before falling back to every paragraph on the page.
func DefaultContainers() []Selector {
	var sels []Selector
	for _, tag := range []string{"article", "div"} {
		for _, class := range []string{"article-content", "article-body", "story-content", "content-body"} {
			sels = append(sels, Selector{Tag: tag, Class: class})
		}
	}
	return sels
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Type:            "http",
			TimeoutSeconds:  10,
			UserAgent:       DefaultUserAgent,
			Delay:           2 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
		},
		Proxy: ProxyConfig{
			Rotation: "round_robin",
		},
		Search: SearchConfig{
			Provider: "rss",
			Endpoint: "https://news.google.com/rss/search",
			Query:    "Eternal stock market",
			Language: "en",
			Region:   "IN",
			Period:   "7d",
			HTML: HTMLSearch{
				ResultSelector: "article",
				TitleSelector:  "h3, h4, a.JtKRv",
				LinkSelector:   "a[href]",
				DateSelector:   "time",
			},
		},
		Extract: ExtractConfig{
			Containers: DefaultContainers(),
		},
		Pipeline: PipelineConfig{
			SanitizeTitles: true,
		},
		Storage: StorageConfig{
			Type:       "json",
			OutputPath: "eternal_stock_news.json",
			Mongo: MongoStorage{
				URI:        "mongodb://localhost:27017",
				Database:   "stocknews",
				Collection: "news",
			},
		},
		Source: SourceConfig{
			Endpoint:   "https://stock.indianapi.in",
			OutputPath: "stock_data.json",
		},
		Finance: FinanceConfig{
			QuoteURL: "https://www.google.com/finance/quote/%s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
