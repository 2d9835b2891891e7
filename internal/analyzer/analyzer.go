package analyzer

import (
	"context"

	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/models"
	"pagepipe/internal/report"
	"pagepipe/internal/storage"
)

// Analyzer runs the terminal analysis stage.
type Analyzer struct {
	cfg   *config.Config
	store *storage.Store
	log   *logger.Logger
}

// New creates an analysis stage bound to a store.
func New(cfg *config.Config, store *storage.Store, log *logger.Logger) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		store: store,
		log:   log,
	}
}

// Run waits for the processing stage, folds every structured record into the
// corpus, and writes the final report (JSON always, Markdown when enabled).
// The report reflects exactly the set of records present in the shared
// volume: documents_processed equals the number of records read.
func (a *Analyzer) Run(ctx context.Context) (*models.Report, error) {
	if err := a.store.WaitForMarker(ctx, storage.ProcessMarker,
		a.cfg.Wait.PollInterval(), a.cfg.Wait.Timeout()); err != nil {
		return nil, err
	}

	keys, err := a.store.ListRecords()
	if err != nil {
		return nil, err
	}

	a.log.Info("analyze stage starting", "records", len(keys))

	c := newCorpus(a.cfg.Analyze.NgramSizes)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := a.store.ReadRecord(key)
		if err != nil {
			// A record listed but unreadable is a corrupt artifact; skip it
			// rather than abort, matching the per-item failure policy of the
			// upstream stages.
			a.log.Warn("skipping unreadable record", "key", key, "error", err)

			continue
		}

		c.add(record)
	}

	result := c.report(a.cfg.Analyze.TopWords, a.cfg.Analyze.Similarity)

	if err := a.store.WriteReport(result); err != nil {
		return nil, err
	}

	if a.cfg.Analyze.MarkdownReport {
		rendered, err := report.RenderMarkdown(result)
		if err != nil {
			return nil, err
		}

		if err := a.store.WriteReportMarkdown(rendered); err != nil {
			return nil, err
		}
	}

	a.log.Info("analyze stage complete",
		"documents", result.DocumentsProcessed,
		"total_words", result.TotalWords,
		"unique_words", result.UniqueWords,
	)

	return result, nil
}
