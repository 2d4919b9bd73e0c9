package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/engine"
	"github.com/IshaanNene/stocknews/internal/storage"
	"github.com/IshaanNene/stocknews/internal/types"
)

var (
	newsOutput     string
	newsFormat     string
	newsDelay      string
	newsTimeout    int
	newsUserAgent  string
	newsMaxResults int
	newsProvider   string
	newsQuiet      bool
)

// newsCmd creates the "news" subcommand.
func newsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news [query]",
		Short: "Search for stock news and save every article",
		Long: `Search the configured news provider, fetch each result, extract the
article body and write the items in search order.

Without a query the configured search.query is used.`,
		Args: cobra.ArbitraryArgs,
		RunE: runNews,
	}

	cmd.Flags().StringVarP(&newsOutput, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&newsFormat, "format", "f", "", "output format: json, jsonl, csv, mongodb (comma-separated for several)")
	cmd.Flags().StringVar(&newsDelay, "delay", "", "delay between article fetches (e.g. 2s)")
	cmd.Flags().IntVar(&newsTimeout, "timeout", 0, "per-request timeout in seconds")
	cmd.Flags().StringVar(&newsUserAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().IntVar(&newsMaxResults, "max-results", -1, "cap on search results (0 = unlimited)")
	cmd.Flags().StringVar(&newsProvider, "provider", "", "search provider: rss, html")
	cmd.Flags().BoolVarP(&newsQuiet, "quiet", "q", false, "skip the per-item console report")

	return cmd
}

// applyNewsOverrides copies explicitly set flags into cfg.
func applyNewsOverrides(cfg *config.Config) error {
	if newsOutput != "" {
		cfg.Storage.OutputPath = newsOutput
	}
	if newsFormat != "" {
		cfg.Storage.Type = newsFormat
	}
	if newsDelay != "" {
		d, err := parseDelay(newsDelay)
		if err != nil {
			return err
		}
		cfg.Fetcher.Delay = d
	}
	if newsTimeout > 0 {
		cfg.Fetcher.TimeoutSeconds = newsTimeout
	}
	if newsUserAgent != "" {
		cfg.Fetcher.UserAgent = newsUserAgent
	}
	if newsMaxResults >= 0 {
		cfg.Search.MaxResults = newsMaxResults
	}
	if newsProvider != "" {
		cfg.Search.Provider = newsProvider
	}
	return nil
}

// runNews executes the news command.
func runNews(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadConfig(applyNewsOverrides)
	if err != nil {
		return err
	}
	defer closer.Close()

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query = cfg.Search.Query
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.FromConfig(ctx, &cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	var progress engine.ProgressFunc
	if !newsQuiet {
		progress = func(i, total int, res types.ItemResult) {
			fmt.Printf("[%d/%d] %s %s\n", i+1, total, outcomeIcon(res.Outcome()), res.Item.Title)
		}
	}

	eng, err := engine.New(cfg, logger, engine.WithProgress(progress))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	fmt.Printf("🔎 Fetching news for: %s\n", query)

	start := time.Now()
	results, err := eng.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	items := types.Items(results)
	if err := store.Store(ctx, items); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if !newsQuiet {
		printReport(os.Stdout, results)
	}

	elapsed := time.Since(start)
	stats := eng.Stats().Snapshot()

	fmt.Printf("\n✅ News run complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Results:   %v found\n", stats["results"])
	fmt.Printf("   Items:     %v with content, %v empty, %v failed\n", stats["items_ok"], stats["items_empty"], stats["items_failed"])
	fmt.Printf("   Data:      %v bytes downloaded\n", stats["bytes_downloaded"])
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, cfg.Storage.Type)

	if len(items) == 0 {
		fmt.Println("\n💡 No news items were found. Try a broader query or a longer search.period.")
	}
	return nil
}

func outcomeIcon(o types.Outcome) string {
	switch o {
	case types.OutcomeOK:
		return "✓"
	case types.OutcomeEmpty:
		return "∅"
	default:
		return "✗"
	}
}
