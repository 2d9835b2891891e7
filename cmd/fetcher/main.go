// Package main provides the fetcher command-line tool, the first stage of
// the pipeline: it retrieves every URL in the input list and persists raw
// page artifacts into the shared volume.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pagepipe/internal/config"
	"pagepipe/internal/fetcher"
	"pagepipe/internal/logger"
	"pagepipe/internal/storage"
)

const defaultConfigPath = "configs/pipeline.yaml"

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	sharedDir := flag.String("shared", "", "Shared volume path (overrides config)")
	urlList := flag.String("urls", "", "URL list file path (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile, *sharedDir, *urlList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStageLogger("fetcher", cfg.Logging.Level)
	log.Info("configuration loaded", "summary", cfg.String())

	store := storage.New(cfg.Shared)

	summary, err := fetcher.New(cfg, store, log).Run(context.Background())
	if err != nil {
		log.Error("fetch stage failed", "error", err)
		os.Exit(1)
	}

	if summary.Failed > 0 {
		log.Warn("batch finished with per-URL failures", "failed", summary.Failed)
	}
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

func printUsage() {
	fmt.Println("Usage: fetcher [-config pipeline.yaml] [-shared DIR] [-urls FILE]")
	fmt.Println()
	fmt.Println("Reads the URL list, fetches every page, and writes keyed raw")
	fmt.Println("artifacts plus responses.json, errors.log, and the completion")
	fmt.Println("marker into the shared volume.")
	fmt.Println()
	flag.PrintDefaults()
}
