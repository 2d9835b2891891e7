package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/models"
	"pagepipe/internal/storage"
	"pagepipe/internal/textutil"
	"pagepipe/pkg/urlkey"
)

// Fetcher runs the fetch stage over a URL list.
type Fetcher struct {
	cfg     *config.Config
	store   *storage.Store
	scraper *Scraper
	log     *logger.Logger
}

// New creates a fetch stage bound to a store.
func New(cfg *config.Config, store *storage.Store, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		store:   store,
		scraper: NewScraper(&cfg.Fetch),
		log:     log,
	}
}

// ReadURLList reads the ordered URL list from path. Blank lines and lines
// starting with '#' are skipped; duplicate URLs keep their first occurrence.
func ReadURLList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open url list %s: %w", path, err)
	}
	defer file.Close()

	seen := map[string]struct{}{}

	var urls []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := urlkey.Normalize(line)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list %s: %w", path, err)
	}

	return urls, nil
}

// Run fetches every URL in the input list, persists raw pages for successful
// retrievals, records failures, and finishes by writing responses.json,
// errors.log, and the fetch-completion marker. Per-URL failures never abort
// the batch.
func (f *Fetcher) Run(ctx context.Context) (*models.FetchSummary, error) {
	urls, err := ReadURLList(f.cfg.Fetch.URLList)
	if err != nil {
		return nil, err
	}

	f.log.Info("fetch stage starting", "urls", len(urls), "concurrency", f.cfg.Fetch.Concurrency)

	startedAt := time.Now().UTC()

	// Results keep input order; each goroutine writes only its own slot and
	// its own keyed artifact, so no further synchronization is needed.
	results := make([]models.FetchResult, len(urls))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.cfg.Fetch.Concurrency)

	for i, url := range urls {
		i, url := i, url

		group.Go(func() error {
			results[i] = f.fetchOne(groupCtx, url)

			return nil
		})
	}

	// Workers never return errors; per-URL failures land in the results.
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch batch interrupted: %w", err)
	}

	summary := buildSummary(results, startedAt, time.Now().UTC())

	if err := f.store.WriteResponses(results); err != nil {
		return nil, err
	}

	if err := f.store.WriteErrorLog(errorLines(results)); err != nil {
		return nil, err
	}

	if err := f.store.WriteMarker(storage.FetchMarker, "fetcher", summary); err != nil {
		return nil, err
	}

	f.log.Info("fetch stage complete",
		"successful", summary.Successful,
		"failed", summary.Failed,
		"bytes", summary.TotalBytesDownloaded,
	)

	return summary, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) models.FetchResult {
	key := urlkey.Derive(url)

	result := models.FetchResult{
		URL:       url,
		Key:       key,
		FetchedAt: time.Now().UTC(),
	}

	body, statusCode, duration, err := f.scraper.FetchWithMetrics(ctx, url)
	result.StatusCode = statusCode
	result.ResponseTimeMs = textutil.Round(float64(duration.Microseconds())/1000.0, 3)

	if err != nil {
		result.Error = err.Error()

		f.log.Warn("fetch failed", "url", url, "status", statusCode, "error", err)

		return result
	}

	result.ContentLength = len(body)

	if IsTextContent(http.DetectContentType(body)) {
		result.WordCount = textutil.WordCount(string(body))
	}

	if err := f.store.WriteRawPage(key, body); err != nil {
		result.Error = err.Error()

		f.log.Error("failed to persist raw page", "url", url, "key", key, "error", err)

		return result
	}

	f.log.Debug("fetched", "url", url, "key", key, "bytes", len(body))

	return result
}

func buildSummary(results []models.FetchResult, startedAt, finishedAt time.Time) *models.FetchSummary {
	summary := &models.FetchSummary{
		TotalURLs:              len(results),
		StatusCodeDistribution: map[string]int{},
		StartedAt:              startedAt,
		FinishedAt:             finishedAt,
	}

	totalMs := 0.0

	for _, r := range results {
		if r.Success() {
			summary.Successful++
		} else {
			summary.Failed++
		}

		summary.TotalBytesDownloaded += r.ContentLength
		totalMs += r.ResponseTimeMs

		if r.StatusCode != 0 {
			summary.StatusCodeDistribution[strconv.Itoa(r.StatusCode)]++
		}
	}

	if len(results) > 0 {
		summary.AverageResponseTimeMs = textutil.Round(totalMs/float64(len(results)), 3)
	}

	return summary
}

func errorLines(results []models.FetchResult) []string {
	var lines []string

	for _, r := range results {
		if r.Success() {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s %s: %s",
			r.FetchedAt.Format(time.RFC3339), r.URL, r.Error))
	}

	return lines
}
