// Package main provides the unified pipeline command that runs fetching,
// processing, and analysis in sequence within a single process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pagepipe/internal/analyzer"
	"pagepipe/internal/config"
	"pagepipe/internal/fetcher"
	"pagepipe/internal/logger"
	"pagepipe/internal/processor"
	"pagepipe/internal/storage"
)

const defaultConfigPath = "configs/pipeline.yaml"

func main() {
	// 1. Define Command-Line Flags
	// ---------------------------
	configFile := flag.String("config", "", "Path to YAML configuration file")
	sharedDir := flag.String("shared", "", "Shared volume path (overrides config)")
	urlList := flag.String("urls", "", "URL list file path (overrides config)")

	flag.Parse()

	cfg, err := loadConfig(*configFile, *sharedDir, *urlList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	store := storage.New(cfg.Shared)
	ctx := context.Background()

	log.Info("🚀 Starting page pipeline")
	log.Info(fmt.Sprintf("📍 Shared volume: %s", cfg.Shared.BasePath))
	log.Info(fmt.Sprintf("📄 URL list: %s", cfg.Fetch.URLList))

	startTime := time.Now()

	// 2. Fetch Stage
	// --------------
	log.Info("Phase 1: Fetching...")

	fetchSummary, err := fetcher.New(cfg, store, logger.NewStageLogger("fetcher", cfg.Logging.Level)).Run(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Fetch stage failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Fetched %d/%d pages in %v",
		fetchSummary.Successful, fetchSummary.TotalURLs, time.Since(startTime)))

	// 3. Process Stage
	// ----------------
	log.Info("Phase 2: Processing...")

	processStart := time.Now()

	processSummary, err := processor.New(cfg, store, logger.NewStageLogger("processor", cfg.Logging.Level)).Run(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Process stage failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Processed %d/%d pages in %v",
		processSummary.ProcessedSuccess, processSummary.FilesSeen, time.Since(processStart)))

	// 4. Analyze Stage
	// ----------------
	log.Info("Phase 3: Analyzing...")

	analyzeStart := time.Now()

	report, err := analyzer.New(cfg, store, logger.NewStageLogger("analyzer", cfg.Logging.Level)).Run(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Analyze stage failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Analyzed %d documents in %v",
		report.DocumentsProcessed, time.Since(analyzeStart)))

	// 5. Final Report
	// ---------------
	log.Info("✨ Pipeline Complete!")
	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("URLs Fetched: %d ok / %d failed\n", fetchSummary.Successful, fetchSummary.Failed)
	fmt.Printf("Pages Processed: %d ok / %d failed\n", processSummary.ProcessedSuccess, processSummary.ProcessedFailed)
	fmt.Printf("Documents Analyzed: %d\n", report.DocumentsProcessed)
	fmt.Printf("Total Words: %d (%d unique)\n", report.TotalWords, report.UniqueWords)
	fmt.Printf("Report: %s\n", store.ReportJSONPath())
	fmt.Printf("Total Duration: %v\n", time.Since(startTime))
}

func loadConfig(path, sharedDir, urlList string) (*config.Config, error) {
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
		cfg.Fetch.URLList = filepath.Join(sharedDir, "urls.txt")
	}

	if urlList != "" {
		cfg.Fetch.URLList = urlList
	}

	return cfg, cfg.Validate()
}
