package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
shared:
  base_path: "./volume"
fetch:
  url_list: "./volume/urls.txt"
  user_agent: "pagepipe-test/1.0"
  timeout_sec: 5
  max_body_kb: 256
  concurrency: 2
  retry:
    max_attempts: 2
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
analyze:
  top_words: 50
  ngram_sizes: [2, 3]
  similarity: true
  markdown_report: true
wait:
  poll_interval_ms: 50
  timeout_sec: 10
logging:
  level: "debug"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Shared.BasePath != "./volume" {
		t.Errorf("Expected base_path './volume', got '%s'", cfg.Shared.BasePath)
	}

	if cfg.Fetch.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Fetch.Concurrency)
	}

	if cfg.Analyze.TopWords != 50 {
		t.Errorf("Expected top_words 50, got %d", cfg.Analyze.TopWords)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadConfig_DefaultsFillMissingSections(t *testing.T) {
	configPath := createTempConfigFile(t, "shared:\n  base_path: \"./v\"\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Fetch.Retry.MaxAttempts != 3 {
		t.Errorf("Expected default max_attempts 3, got %d", cfg.Fetch.Retry.MaxAttempts)
	}

	if cfg.Analyze.TopWords != 100 {
		t.Errorf("Expected default top_words 100, got %d", cfg.Analyze.TopWords)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "shared: [not a mapping")

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing shared path", func(c *Config) { c.Shared.BasePath = "" }, ErrMissingSharedPath},
		{"missing url list", func(c *Config) { c.Fetch.URLList = "" }, ErrMissingURLList},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero max body", func(c *Config) { c.Fetch.MaxBodyKb = 0 }, ErrInvalidMaxBody},
		{"zero attempts", func(c *Config) { c.Fetch.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"negative delay", func(c *Config) { c.Fetch.Retry.InitialDelayMs = -1 }, ErrInvalidInitialDelay},
		{"low multiplier", func(c *Config) { c.Fetch.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"zero top words", func(c *Config) { c.Analyze.TopWords = 0 }, ErrInvalidTopWords},
		{"unigram size", func(c *Config) { c.Analyze.NgramSizes = []int{1} }, ErrInvalidNgramSize},
		{"zero poll interval", func(c *Config) { c.Wait.PollIntervalMs = 0 }, ErrInvalidPollInterval},
		{"zero wait timeout", func(c *Config) { c.Wait.TimeoutSec = 0 }, ErrInvalidWaitTimeout},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		MaxAttempts:       5,
		InitialDelayMs:    100,
		MaxDelayMs:        350,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 350 * time.Millisecond}, // capped by max_delay_ms
	}

	for _, tt := range tests {
		got := rp.GetRetryDelay(tt.attempt)
		if got != tt.expected {
			t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestSharedConfig_DerivedPaths(t *testing.T) {
	s := SharedConfig{BasePath: "vol"}

	if got := s.RawPath(); got != filepath.Join("vol", "raw") {
		t.Errorf("RawPath = %s", got)
	}

	if got := s.ProcessedPath(); got != filepath.Join("vol", "processed") {
		t.Errorf("ProcessedPath = %s", got)
	}

	if got := s.StatusPath(); got != filepath.Join("vol", "status") {
		t.Errorf("StatusPath = %s", got)
	}

	if got := s.AnalysisPath(); got != filepath.Join("vol", "analysis") {
		t.Errorf("AnalysisPath = %s", got)
	}

	override := SharedConfig{BasePath: "vol", RawDir: "elsewhere"}
	if got := override.RawPath(); got != "elsewhere" {
		t.Errorf("RawPath override = %s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PAGEPIPE_SHARED_DIR", "/mnt/volume")
	t.Setenv("PAGEPIPE_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Shared.BasePath != "/mnt/volume" {
		t.Errorf("Expected env shared dir, got %s", cfg.Shared.BasePath)
	}

	if cfg.Fetch.URLList != filepath.Join("/mnt/volume", "urls.txt") {
		t.Errorf("Expected url list under env shared dir, got %s", cfg.Fetch.URLList)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env log level, got %s", cfg.Logging.Level)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shared.BasePath = "./elsewhere"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Shared.BasePath != "./elsewhere" {
		t.Errorf("Round trip lost base_path: %s", loaded.Shared.BasePath)
	}
}
