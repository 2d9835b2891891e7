package models

import "time"

// StructuredRecord is the per-page output of the processor stage:
// cleaned text plus extracted metadata, keyed by the source URL.
// Records are immutable once written to the shared volume.
type StructuredRecord struct {
	SourceURL   string         `json:"source_url"`
	Key         string         `json:"key"`
	Title       string         `json:"title,omitempty"`
	Text        string         `json:"text"`
	Links       []string       `json:"links"`
	Images      []string       `json:"images"`
	Statistics  TextStatistics `json:"statistics"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// TextStatistics holds the per-document counts computed during processing.
type TextStatistics struct {
	WordCount      int     `json:"word_count"`
	SentenceCount  int     `json:"sentence_count"`
	ParagraphCount int     `json:"paragraph_count"`
	AvgWordLength  float64 `json:"avg_word_length"`
}

// ProcessResult records the outcome of processing one raw page.
type ProcessResult struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Processing statuses used in ProcessResult.Status.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ProcessSummary aggregates a processing batch for the completion marker.
type ProcessSummary struct {
	Timestamp        time.Time       `json:"timestamp"`
	FilesSeen        int             `json:"files_seen"`
	ProcessedSuccess int             `json:"processed_success"`
	ProcessedFailed  int             `json:"processed_failed"`
	Results          []ProcessResult `json:"results"`
}
