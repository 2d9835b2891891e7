// Package main provides the processor command-line tool, the second stage of
// the pipeline: it waits for the fetch-completion marker, parses every raw
// page, and writes structured records into the shared volume.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/processor"
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

	log := logger.NewStageLogger("processor", cfg.Logging.Level)
	log.Info("configuration loaded", "summary", cfg.String())

	store := storage.New(cfg.Shared)

	summary, err := processor.New(cfg, store, log).Run(context.Background())
	if err != nil {
		log.Error("process stage failed", "error", err)
		os.Exit(1)
	}

	if summary.ProcessedFailed > 0 {
		log.Warn("batch finished with per-page failures", "failed", summary.ProcessedFailed)
	}
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
	fmt.Println("Usage: processor [-config pipeline.yaml] [-shared DIR]")
	fmt.Println()
	fmt.Println("Waits for the fetch-completion marker, extracts structured")
	fmt.Println("content from every raw page, and writes one JSON record per")
	fmt.Println("page plus the completion marker into the shared volume.")
	fmt.Println()
	flag.PrintDefaults()
}
