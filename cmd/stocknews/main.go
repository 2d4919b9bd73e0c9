package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/observability"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stocknews",
		Short: "stocknews: stock news scraper and market data collector",
		Long: `stocknews searches a news provider for a stock, fetches every article,
extracts its body text, normalizes its date and writes the batch to disk.

Features:
  • Google News RSS or HTML search listing
  • Container, XPath and readability article extraction
  • Relative date normalization ("3 hours ago", "2 days ago")
  • JSON, JSONL, CSV and MongoDB output
  • Finance quote page metrics and market-data API dumps`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newsCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the config file, applies overrides, validates the
// result and builds the logger.
func loadConfig(overrides func(*config.Config) error) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if overrides != nil {
		if err := overrides(cfg); err != nil {
			return nil, nil, nil, err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := observability.NewLogger(cfg.Logging, verbose)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

// parseDelay accepts a Go duration ("1500ms") or plain seconds ("2").
func parseDelay(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var secs float64
	if _, err := fmt.Sscanf(s, "%g", &secs); err != nil {
		return 0, fmt.Errorf("invalid delay %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stocknews %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cfg.Source.APIKey != "" {
				cfg.Source.APIKey = "********"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
