package processor

import (
	"context"
	"time"

	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/models"
	"pagepipe/internal/storage"
)

// Processor runs the processing stage over every raw page in the shared
// volume.
type Processor struct {
	cfg   *config.Config
	store *storage.Store
	log   *logger.Logger
}

// New creates a processing stage bound to a store.
func New(cfg *config.Config, store *storage.Store, log *logger.Logger) *Processor {
	return &Processor{
		cfg:   cfg,
		store: store,
		log:   log,
	}
}

// Run waits for the fetch stage to complete, then processes every raw page
// into a structured record. Per-item failures are recorded in the summary
// and do not abort the batch. The stage finishes by writing the
// process-completion marker.
func (p *Processor) Run(ctx context.Context) (*models.ProcessSummary, error) {
	if err := p.store.WaitForMarker(ctx, storage.FetchMarker,
		p.cfg.Wait.PollInterval(), p.cfg.Wait.Timeout()); err != nil {
		return nil, err
	}

	keys, err := p.store.ListRawPages()
	if err != nil {
		return nil, err
	}

	sourceURLs, err := p.sourceURLsByKey()
	if err != nil {
		return nil, err
	}

	p.log.Info("process stage starting", "raw_pages", len(keys))

	summary := &models.ProcessSummary{
		FilesSeen: len(keys),
		Results:   make([]models.ProcessResult, 0, len(keys)),
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := p.processOne(key, sourceURLs[key])
		summary.Results = append(summary.Results, result)

		if result.Status == models.StatusSuccess {
			summary.ProcessedSuccess++
		} else {
			summary.ProcessedFailed++
		}
	}

	summary.Timestamp = time.Now().UTC()

	if err := p.store.WriteMarker(storage.ProcessMarker, "processor", summary); err != nil {
		return nil, err
	}

	p.log.Info("process stage complete",
		"success", summary.ProcessedSuccess,
		"failed", summary.ProcessedFailed,
	)

	return summary, nil
}

func (p *Processor) processOne(key, sourceURL string) models.ProcessResult {
	html, err := p.store.ReadRawPage(key)
	if err != nil {
		p.log.Warn("failed to read raw page", "key", key, "error", err)

		return models.ProcessResult{Input: key, Status: models.StatusFailed, Error: err.Error()}
	}

	extraction, err := Extract(html)
	if err != nil {
		p.log.Warn("failed to extract content", "key", key, "error", err)

		return models.ProcessResult{Input: key, Status: models.StatusFailed, Error: err.Error()}
	}

	record := &models.StructuredRecord{
		SourceURL:   sourceURL,
		Key:         key,
		Title:       extraction.Title,
		Text:        extraction.Text,
		Links:       capLinks(extraction.Links, p.cfg.Process.MaxLinks),
		Images:      capLinks(extraction.Images, p.cfg.Process.MaxLinks),
		Statistics:  extraction.Statistics(),
		ProcessedAt: time.Now().UTC(),
	}

	if record.Links == nil {
		record.Links = []string{}
	}

	if record.Images == nil {
		record.Images = []string{}
	}

	if err := p.store.WriteRecord(record); err != nil {
		p.log.Error("failed to persist record", "key", key, "error", err)

		return models.ProcessResult{Input: key, Status: models.StatusFailed, Error: err.Error()}
	}

	p.log.Debug("processed", "key", key, "words", record.Statistics.WordCount)

	return models.ProcessResult{Input: key, Output: key + ".json", Status: models.StatusSuccess}
}

// sourceURLsByKey maps artifact keys back to the URLs recorded by the fetch
// stage, so records carry their provenance.
func (p *Processor) sourceURLsByKey() (map[string]string, error) {
	responses, err := p.store.ReadResponses()
	if err != nil {
		return nil, err
	}

	urls := make(map[string]string, len(responses))
	for _, r := range responses {
		urls[r.Key] = r.URL
	}

	return urls, nil
}

func capLinks(links []string, limit int) []string {
	if limit > 0 && len(links) > limit {
		return links[:limit]
	}

	return links
}
