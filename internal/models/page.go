// Package models defines data structures handed between pipeline stages.
package models

import "time"

// FetchResult records the outcome of one URL retrieval. Every input URL
// produces exactly one FetchResult, whether the fetch succeeded or not.
type FetchResult struct {
	URL            string    `json:"url"`
	Key            string    `json:"key"`
	StatusCode     int       `json:"status_code,omitempty"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	ContentLength  int       `json:"content_length"`
	WordCount      int       `json:"word_count,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
	Error          string    `json:"error,omitempty"`
}

// Success reports whether the fetch produced a raw page artifact.
func (r *FetchResult) Success() bool {
	return r.Error == ""
}

// FetchSummary aggregates a fetch batch. It is embedded in the
// fetch-completion marker so downstream stages can account for every URL.
type FetchSummary struct {
	TotalURLs              int            `json:"total_urls"`
	Successful             int            `json:"successful_requests"`
	Failed                 int            `json:"failed_requests"`
	AverageResponseTimeMs  float64        `json:"average_response_time_ms"`
	TotalBytesDownloaded   int            `json:"total_bytes_downloaded"`
	StatusCodeDistribution map[string]int `json:"status_code_distribution"`
	StartedAt              time.Time      `json:"processing_start"`
	FinishedAt             time.Time      `json:"processing_end"`
}
