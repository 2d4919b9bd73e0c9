package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/fetcher"
	"github.com/IshaanNene/stocknews/internal/marketdata"
)

var (
	quoteOutput string
	quoteAPIKey string
)

// quoteCmd creates the "quote" subcommand.
func quoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote [name]",
		Short: "Download a company's stock document from the market-data API",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuote,
	}

	cmd.Flags().StringVarP(&quoteOutput, "output", "o", "", "output file (default source.output_path)")
	cmd.Flags().StringVar(&quoteAPIKey, "api-key", "", "API key (default source.api_key or STOCKNEWS_SOURCE_API_KEY)")

	return cmd
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadConfig(func(cfg *config.Config) error {
		if quoteOutput != "" {
			cfg.Source.OutputPath = quoteOutput
		}
		if quoteAPIKey != "" {
			cfg.Source.APIKey = quoteAPIKey
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	name := "Eternal"
	if len(args) == 1 {
		name = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	client, err := marketdata.NewClient(&cfg.Source, f, logger)
	if err != nil {
		return err
	}

	raw, err := client.Quote(ctx, name)
	if err != nil {
		return fmt.Errorf("quote %q: %w", name, err)
	}

	if err := marketdata.Save(cfg.Source.OutputPath, raw); err != nil {
		return fmt.Errorf("save quote: %w", err)
	}

	fmt.Printf("✅ Data has been saved to %s (%d bytes)\n", cfg.Source.OutputPath, len(raw))
	return nil
}
