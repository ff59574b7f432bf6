// Package main provides the entry point for the autoscripts CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lex1797/automation-scripts/internal/config"
)

// NewRootCmd creates the root command for autoscripts.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoscripts",
		Short: "Small automation tools: web scraping, file sorting, CSV processing",
		Long: `autoscripts bundles three automation tools behind one binary:

  scrape    crawl a site within its domain and export extracted items
  organize  sort a directory of files into category and date folders
  tabular   stream a large CSV through a per-row transform`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewOrganizeCmd())
	cmd.AddCommand(NewTabularCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger constructs the process logger from logging configuration.
func buildLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unsupported log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Structured {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}
