// Package main provides the analyzer command-line tool, the final stage of
// the pipeline: it waits for the process-completion marker, folds every
// structured record into corpus statistics, and writes the final report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pagepipe/internal/analyzer"
	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/storage"
)

const defaultConfigPath = "configs/pipeline.yaml"

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	sharedDir := flag.String("shared", "", "Shared volume path (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile, *sharedDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStageLogger("analyzer", cfg.Logging.Level)
	log.Info("configuration loaded", "summary", cfg.String())

	store := storage.New(cfg.Shared)

	report, err := analyzer.New(cfg, store, log).Run(context.Background())
	if err != nil {
		log.Error("analyze stage failed", "error", err)
		os.Exit(1)
	}

	log.Info("report written",
		"path", store.ReportJSONPath(),
		"documents", report.DocumentsProcessed,
		"total_words", report.TotalWords)
}

func loadConfig(path, sharedDir string) (*config.Config, error) {
	var cfg *config.Config

	var err error

	switch {
	case path != "":
		cfg, err = config.LoadConfig(path)
	default:
		if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
			cfg, err = config.LoadConfig(defaultConfigPath)
		} else {
			cfg = config.DefaultConfig()
			cfg.ApplyEnvOverrides()
		}
	}

	if err != nil {
		return nil, err
	}

	if sharedDir != "" {
		cfg.Shared = config.SharedConfig{BasePath: sharedDir}
	}

	return cfg, cfg.Validate()
}

func printUsage() {
	fmt.Println("Usage: analyzer [-config pipeline.yaml] [-shared DIR]")
	fmt.Println()
	fmt.Println("Waits for the process-completion marker, computes corpus-wide")
	fmt.Println("word, n-gram, similarity, and readability statistics, and")
	fmt.Println("writes final_report.json (and optionally Markdown).")
	fmt.Println()
	flag.PrintDefaults()
}
