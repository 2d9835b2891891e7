// Package config provides configuration management for the pipeline stages.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSharedPath        = errors.New("shared.base_path is required")
	ErrMissingURLList           = errors.New("fetch.url_list is required")
	ErrInvalidTimeout           = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidConcurrency       = errors.New("fetch.concurrency must be at least 1")
	ErrInvalidMaxBody           = errors.New("fetch.max_body_kb must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("fetch.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("fetch.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("fetch.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTopWords          = errors.New("analyze.top_words must be at least 1")
	ErrInvalidNgramSize         = errors.New("analyze.ngram_sizes entries must be at least 2")
	ErrInvalidPollInterval      = errors.New("wait.poll_interval_ms must be at least 1")
	ErrInvalidWaitTimeout       = errors.New("wait.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Environment variable overrides.
const (
	sharedDirEnv = "PAGEPIPE_SHARED_DIR"
	logLevelEnv  = "PAGEPIPE_LOG_LEVEL"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Shared  SharedConfig  `yaml:"shared"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Process ProcessConfig `yaml:"process"`
	Analyze AnalyzeConfig `yaml:"analyze"`
	Wait    WaitConfig    `yaml:"wait"`
	Logging LoggingConfig `yaml:"logging"`
}

// SharedConfig locates the filesystem volume all stages hand artifacts
// through. The sub-directories are derived from BasePath unless overridden.
type SharedConfig struct {
	BasePath     string `yaml:"base_path"`
	RawDir       string `yaml:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir"`
	StatusDir    string `yaml:"status_dir"`
	AnalysisDir  string `yaml:"analysis_dir"`
}

// RawPath returns the directory holding fetched page artifacts.
func (s *SharedConfig) RawPath() string {
	if s.RawDir != "" {
		return s.RawDir
	}

	return filepath.Join(s.BasePath, "raw")
}

// ProcessedPath returns the directory holding structured records.
func (s *SharedConfig) ProcessedPath() string {
	if s.ProcessedDir != "" {
		return s.ProcessedDir
	}

	return filepath.Join(s.BasePath, "processed")
}

// StatusPath returns the directory holding stage-completion markers.
func (s *SharedConfig) StatusPath() string {
	if s.StatusDir != "" {
		return s.StatusDir
	}

	return filepath.Join(s.BasePath, "status")
}

// AnalysisPath returns the directory holding the final report.
func (s *SharedConfig) AnalysisPath() string {
	if s.AnalysisDir != "" {
		return s.AnalysisDir
	}

	return filepath.Join(s.BasePath, "analysis")
}

// FetchConfig contains fetcher-stage settings.
type FetchConfig struct {
	URLList     string      `yaml:"url_list"`
	UserAgent   string      `yaml:"user_agent"`
	TimeoutSec  int         `yaml:"timeout_sec"`
	MaxBodyKb   int         `yaml:"max_body_kb"`
	Concurrency int         `yaml:"concurrency"`
	Retry       RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior for fetch attempts.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if rp.MaxDelayMs > 0 && int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// ProcessConfig contains processor-stage settings.
type ProcessConfig struct {
	// MaxLinks caps how many links and images are kept per record.
	// Zero means unlimited.
	MaxLinks int `yaml:"max_links"`
}

// AnalyzeConfig contains analyzer-stage settings.
type AnalyzeConfig struct {
	TopWords       int   `yaml:"top_words"`
	NgramSizes     []int `yaml:"ngram_sizes"`
	Similarity     bool  `yaml:"similarity"`
	MarkdownReport bool  `yaml:"markdown_report"`
}

// WaitConfig controls how downstream stages wait for upstream markers.
type WaitConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	TimeoutSec     int `yaml:"timeout_sec"`
}

// PollInterval returns the marker polling interval.
func (w *WaitConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// Timeout returns the maximum time to wait for an upstream marker.
func (w *WaitConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a configuration that runs the full pipeline against
// ./shared with conservative fetch settings.
func DefaultConfig() *Config {
	return &Config{
		Shared: SharedConfig{
			BasePath: "shared",
		},
		Fetch: FetchConfig{
			URLList:     filepath.Join("shared", "urls.txt"),
			UserAgent:   "pagepipe/1.0",
			TimeoutSec:  10,
			MaxBodyKb:   5120,
			Concurrency: 4,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
			},
		},
		Process: ProcessConfig{
			MaxLinks: 0,
		},
		Analyze: AnalyzeConfig{
			TopWords:       100,
			NgramSizes:     []int{2, 3},
			Similarity:     true,
			MarkdownReport: true,
		},
		Wait: WaitConfig{
			PollIntervalMs: 2000,
			TimeoutSec:     300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. Fields absent from the
// file keep their defaults, and environment overrides apply last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(sharedDirEnv); v != "" {
		c.Shared.BasePath = v
		c.Fetch.URLList = filepath.Join(v, "urls.txt")
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Shared.BasePath == "" {
		return ErrMissingSharedPath
	}

	if c.Fetch.URLList == "" {
		return ErrMissingURLList
	}

	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Fetch.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.Fetch.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if c.Fetch.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Fetch.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Fetch.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Analyze.TopWords < 1 {
		return ErrInvalidTopWords
	}

	for i, n := range c.Analyze.NgramSizes {
		if n < 2 {
			return fmt.Errorf("%w: ngram_sizes[%d] = %d", ErrInvalidNgramSize, i, n)
		}
	}

	if c.Wait.PollIntervalMs < 1 {
		return ErrInvalidPollInterval
	}

	if c.Wait.TimeoutSec < 1 {
		return ErrInvalidWaitTimeout
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// FetchTimeout returns the per-request HTTP timeout.
func (f *FetchConfig) FetchTimeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// String returns a one-line summary for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("shared=%s urls=%s concurrency=%d top_words=%d",
		c.Shared.BasePath, c.Fetch.URLList, c.Fetch.Concurrency, c.Analyze.TopWords)
}
