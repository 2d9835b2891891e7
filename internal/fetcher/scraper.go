// Package fetcher implements the first pipeline stage: retrieving raw pages
// for every URL in the input list and persisting them as keyed artifacts.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pagepipe/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with a non-2xx status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Scraper performs single-URL retrievals with config-driven retry logic.
type Scraper struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
	userAgent   string
	maxBodyKb   int
}

// NewScraper creates a scraper from the fetch configuration.
func NewScraper(cfg *config.FetchConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.FetchTimeout(),
		},
		retryPolicy: &cfg.Retry,
		userAgent:   cfg.UserAgent,
		maxBodyKb:   cfg.MaxBodyKb,
	}
}

// FetchWithMetrics retrieves one URL and returns (body, statusCode, total
// duration across attempts, error). Transport failures and retryable status
// codes are retried with exponential backoff; a non-2xx final response is an
// error, but the status code is still reported for the summary distribution.
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.retryPolicy.GetRetryDelay(attempt)
			if delay > 0 {
				select {
				case <-ctx.Done():
					return nil, lastStatusCode, totalDuration, ctx.Err()
				case <-time.After(delay):
				}
			}
		}

		body, statusCode, duration, err := s.fetchOnce(ctx, url)
		totalDuration += duration
		lastStatusCode = statusCode

		if err == nil {
			return body, statusCode, totalDuration, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, s.retryPolicy.MaxAttempts, err)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		// Non-2xx responses only retry on transient codes.
		if errors.Is(err, ErrUnexpectedStatusCode) && !isRetryableStatus(statusCode) {
			break
		}
	}

	return nil, lastStatusCode, totalDuration, lastErr
}

func (s *Scraper) fetchOnce(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, time.Since(startTime), fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, time.Since(startTime), fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, resp.StatusCode, time.Since(startTime),
			fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// maxBodyKb is in KB, convert to bytes.
	limit := int64(s.maxBodyKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, time.Since(startTime), fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, time.Since(startTime), nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}

// IsTextContent reports whether a Content-Type header denotes text, which
// decides whether a word count is computed for the fetch result.
func IsTextContent(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text")
}
