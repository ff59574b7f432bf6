package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lex1797/automation-scripts/internal/config"
	"github.com/Lex1797/automation-scripts/internal/crawler"
	"github.com/Lex1797/automation-scripts/internal/export"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl a site within its domain and export extracted items",
		Long: `Scrape crawls from a base URL, staying on the same registrable
domain, extracting one record per article found on each page. The crawl
stops when the page budget is exhausted or no in-scope links remain, and
the accumulated records are written as JSON, CSV, or XLSX.

Examples:
  # Crawl with settings from a config file
  autoscripts scrape --config config.yaml

  # Crawl without a config file
  autoscripts scrape --url https://example.com/news --max-pages 20 --format csv`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringP("url", "u", "", "Base URL to start crawling from (overrides config)")
	cmd.Flags().IntP("max-pages", "p", 0, "Maximum number of pages to fetch (overrides config)")
	cmd.Flags().IntP("concurrency", "n", 0, "Maximum simultaneous requests (overrides config)")
	cmd.Flags().StringP("format", "f", "", "Output format: json, csv, or xlsx (overrides config)")
	cmd.Flags().StringP("output", "o", "", "Output file stem, extension is appended (overrides config)")
	cmd.Flags().Duration("delay", 0, "Politeness delay after each fetch (overrides config)")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadScrapeConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(cfg.Scrape.OutputFormat)
	if err != nil {
		return err
	}

	engine, err := crawler.New(*cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, runErr := engine.Run(ctx)
	if runErr != nil {
		logger.Warn("crawl interrupted", "error", runErr)
	}

	path, err := export.Export(result, cfg.Scrape.OutputStem, format)
	if errors.Is(err, export.ErrNoRecords) {
		logger.Warn("no results to save")
		return runErr
	}
	if err != nil {
		return err
	}
	logger.Info("saved results", "file", path, "records", len(result.Records))
	return runErr
}

// loadScrapeConfig merges the optional config file with flag overrides.
func loadScrapeConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	} else {
		cfg = config.Default()
	}

	if v, _ := cmd.Flags().GetString("url"); v != "" {
		cfg.Scrape.BaseURL = v
	}
	if v, _ := cmd.Flags().GetInt("max-pages"); v > 0 {
		cfg.Scrape.MaxPages = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Scrape.MaxConcurrent = v
	}
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		cfg.Scrape.OutputFormat = strings.ToLower(strings.TrimSpace(v))
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Scrape.OutputStem = v
	}
	if cmd.Flags().Changed("delay") {
		v, _ := cmd.Flags().GetDuration("delay")
		if v < 0 {
			return nil, fmt.Errorf("delay must be >= 0 (got %s)", v)
		}
		cfg.Scrape.RequestDelay = config.DurationFrom(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
