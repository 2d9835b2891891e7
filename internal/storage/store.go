// Package storage implements the shared-volume handoff contract between
// pipeline stages: keyed artifacts, stage-completion markers, and marker
// waiting for downstream stages.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pagepipe/internal/config"
	"pagepipe/internal/models"
)

// Artifact file extensions.
const (
	rawExt    = ".html"
	recordExt = ".json"
)

// Stage-completion marker file names.
const (
	FetchMarker   = "fetch_complete.json"
	ProcessMarker = "process_complete.json"
)

// Store errors.
var (
	ErrUnknownKey = errors.New("no artifact for key")
)

// Store provides access to one shared volume. All writes ensure their target
// directory exists first, so re-running a stage against a populated volume
// never fails on a pre-existing path.
type Store struct {
	rawDir       string
	processedDir string
	statusDir    string
	analysisDir  string
}

// New creates a Store over the configured shared volume layout.
func New(shared config.SharedConfig) *Store {
	return &Store{
		rawDir:       shared.RawPath(),
		processedDir: shared.ProcessedPath(),
		statusDir:    shared.StatusPath(),
		analysisDir:  shared.AnalysisPath(),
	}
}

// RawDir returns the directory holding fetched pages.
func (s *Store) RawDir() string { return s.rawDir }

// ProcessedDir returns the directory holding structured records.
func (s *Store) ProcessedDir() string { return s.processedDir }

// StatusDir returns the directory holding completion markers.
func (s *Store) StatusDir() string { return s.statusDir }

// AnalysisDir returns the directory holding the final report.
func (s *Store) AnalysisDir() string { return s.analysisDir }

// EnsureDir creates a directory if absent. Idempotent.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}

// RawPagePath returns the artifact path for a key in the raw area.
func (s *Store) RawPagePath(key string) string {
	return filepath.Join(s.rawDir, key+rawExt)
}

// RecordPath returns the artifact path for a key in the processed area.
func (s *Store) RecordPath(key string) string {
	return filepath.Join(s.processedDir, key+recordExt)
}

// WriteRawPage persists the raw content of one fetched page.
func (s *Store) WriteRawPage(key string, body []byte) error {
	if err := EnsureDir(s.rawDir); err != nil {
		return err
	}

	path := s.RawPagePath(key)
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write raw page %s: %w", path, err)
	}

	return nil
}

// ReadRawPage reads the raw content stored for a key.
func (s *Store) ReadRawPage(key string) ([]byte, error) {
	body, err := os.ReadFile(s.RawPagePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}

		return nil, fmt.Errorf("failed to read raw page %s: %w", key, err)
	}

	return body, nil
}

// ListRawPages returns all raw artifact keys, sorted.
func (s *Store) ListRawPages() ([]string, error) {
	return listKeys(s.rawDir, rawExt)
}

// WriteRecord persists one structured record keyed by its source URL.
func (s *Store) WriteRecord(record *models.StructuredRecord) error {
	if err := EnsureDir(s.processedDir); err != nil {
		return err
	}

	return writeJSON(s.RecordPath(record.Key), record)
}

// ReadRecord loads the structured record stored for a key.
func (s *Store) ReadRecord(key string) (*models.StructuredRecord, error) {
	data, err := os.ReadFile(s.RecordPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}

		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}

	var record models.StructuredRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", key, err)
	}

	return &record, nil
}

// ListRecords returns all structured record keys, sorted.
func (s *Store) ListRecords() ([]string, error) {
	return listKeys(s.processedDir, recordExt)
}

// WriteResponses persists the per-URL fetch results next to the raw pages.
func (s *Store) WriteResponses(results []models.FetchResult) error {
	if err := EnsureDir(s.rawDir); err != nil {
		return err
	}

	return writeJSON(filepath.Join(s.rawDir, "responses.json"), results)
}

// ReadResponses loads the per-URL fetch results written by the fetch stage.
// Downstream stages use it to map artifact keys back to source URLs.
func (s *Store) ReadResponses() ([]models.FetchResult, error) {
	path := filepath.Join(s.rawDir, "responses.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var results []models.FetchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return results, nil
}

// WriteErrorLog writes one line per fetch failure into raw/errors.log.
// An empty failure list still produces the (empty) log file so a reader can
// tell the stage ran.
func (s *Store) WriteErrorLog(lines []string) error {
	if err := EnsureDir(s.rawDir); err != nil {
		return err
	}

	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	path := filepath.Join(s.rawDir, "errors.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	return nil
}

// WriteReport persists the final report as pretty-printed JSON.
func (s *Store) WriteReport(report *models.Report) error {
	if err := EnsureDir(s.analysisDir); err != nil {
		return err
	}

	return writeJSON(filepath.Join(s.analysisDir, "final_report.json"), report)
}

// ReportJSONPath returns the path of the final JSON report.
func (s *Store) ReportJSONPath() string {
	return filepath.Join(s.analysisDir, "final_report.json")
}

// ReportMarkdownPath returns the path of the rendered Markdown report.
func (s *Store) ReportMarkdownPath() string {
	return filepath.Join(s.analysisDir, "final_report.md")
}

// WriteReportMarkdown persists the rendered Markdown report.
func (s *Store) WriteReportMarkdown(content string) error {
	if err := EnsureDir(s.analysisDir); err != nil {
		return err
	}

	if err := os.WriteFile(s.ReportMarkdownPath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}

	return nil
}

func listKeys(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent area means the upstream stage produced nothing.
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	keys := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}

		// Summaries live next to artifacts; only keyed files count.
		if !strings.HasPrefix(name, "page_") {
			continue
		}

		keys = append(keys, strings.TrimSuffix(name, ext))
	}

	sort.Strings(keys)

	return keys, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
