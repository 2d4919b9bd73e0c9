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
	"github.com/IshaanNene/stocknews/internal/finance"
	"github.com/IshaanNene/stocknews/internal/storage"
)

var (
	metricsOutput      string
	metricsSnapshotDir string
)

// metricsCmd creates the "metrics" subcommand.
func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [symbol]",
		Short: "Scrape market cap, volume and revenue from a finance quote page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMetrics,
	}

	cmd.Flags().StringVarP(&metricsOutput, "output", "o", "", "also write the metrics as JSON to this path")
	cmd.Flags().StringVar(&metricsSnapshotDir, "snapshot-dir", "", "save the raw quote page HTML in this directory")

	return cmd
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadConfig(func(cfg *config.Config) error {
		if metricsSnapshotDir != "" {
			cfg.Finance.SnapshotDir = metricsSnapshotDir
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	symbol := "ETERNAL:NSE"
	if len(args) == 1 {
		symbol = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	m, err := finance.NewScraper(&cfg.Finance, f, logger).Metrics(ctx, symbol)
	if err != nil {
		return fmt.Errorf("scrape metrics: %w", err)
	}

	m.Display(os.Stdout)

	if m.SnapshotPath != "" {
		fmt.Printf("\n📄 HTML snapshot saved to: %s\n", m.SnapshotPath)
	}
	if metricsOutput != "" {
		if err := storage.WriteJSONFile(metricsOutput, m); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		fmt.Printf("💾 Metrics saved to: %s\n", metricsOutput)
	}
	return nil
}
