package analyzer

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"pagepipe/internal/config"
	"pagepipe/internal/logger"
	"pagepipe/internal/models"
	"pagepipe/internal/storage"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, *storage.Store) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Shared.BasePath = t.TempDir()
	cfg.Wait.PollIntervalMs = 5
	cfg.Wait.TimeoutSec = 1

	store := storage.New(cfg.Shared)

	return New(cfg, store, logger.NewStageLogger("analyzer", "error")), store
}

func seedRecords(t *testing.T, store *storage.Store, records []*models.StructuredRecord) {
	t.Helper()

	for _, record := range records {
		if err := store.WriteRecord(record); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	if err := store.WriteMarker(storage.ProcessMarker, "processor", models.ProcessSummary{
		FilesSeen:        len(records),
		ProcessedSuccess: len(records),
		Timestamp:        time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
}

func testRecord(key, text string, words, sentences int) *models.StructuredRecord {
	return &models.StructuredRecord{
		SourceURL: "http://a.test/" + key,
		Key:       key,
		Text:      text,
		Links:     []string{},
		Images:    []string{},
		Statistics: models.TextStatistics{
			WordCount:     words,
			SentenceCount: sentences,
		},
		ProcessedAt: time.Now().UTC(),
	}
}

func TestRun_CorpusStatistics(t *testing.T) {
	a, store := newTestAnalyzer(t)

	seedRecords(t, store, []*models.StructuredRecord{
		testRecord("page_a_000000000001", "the cat sat. the cat ran.", 6, 2),
		testRecord("page_b_000000000002", "the dog sat.", 3, 1),
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.DocumentsProcessed != 2 {
		t.Errorf("DocumentsProcessed = %d, want 2", result.DocumentsProcessed)
	}

	if result.TotalWords != 9 {
		t.Errorf("TotalWords = %d, want 9", result.TotalWords)
	}

	// the, cat, sat, ran, dog
	if result.UniqueWords != 5 {
		t.Errorf("UniqueWords = %d, want 5", result.UniqueWords)
	}

	if len(result.TopWords) == 0 || result.TopWords[0].Word != "the" || result.TopWords[0].Count != 3 {
		t.Errorf("unexpected top word: %+v", result.TopWords)
	}

	wantFreq := 3.0 / 9.0
	if math.Abs(result.TopWords[0].Frequency-wantFreq) > 1e-4 {
		t.Errorf("top word frequency = %v, want ~%v", result.TopWords[0].Frequency, wantFreq)
	}

	// 9 words / 3 sentences = 3.0
	if result.Readability.AvgSentenceLength != 3.0 {
		t.Errorf("AvgSentenceLength = %v, want 3.0", result.Readability.AvgSentenceLength)
	}

	if _, err := os.Stat(store.ReportJSONPath()); err != nil {
		t.Errorf("final_report.json not written: %v", err)
	}

	if _, err := os.Stat(store.ReportMarkdownPath()); err != nil {
		t.Errorf("final_report.md not written: %v", err)
	}
}

func TestRun_SimilarityPairs(t *testing.T) {
	a, store := newTestAnalyzer(t)

	seedRecords(t, store, []*models.StructuredRecord{
		testRecord("page_a_000000000001", "alpha beta gamma", 3, 1),
		testRecord("page_b_000000000002", "beta gamma delta", 3, 1),
		testRecord("page_c_000000000003", "epsilon", 1, 1),
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 3 documents -> 3 pairs, in sorted key order.
	if len(result.DocumentSimilarity) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(result.DocumentSimilarity))
	}

	first := result.DocumentSimilarity[0]
	if first.Doc1 != "page_a_000000000001" || first.Doc2 != "page_b_000000000002" {
		t.Errorf("unexpected first pair: %+v", first)
	}

	// {alpha,beta,gamma} vs {beta,gamma,delta}: 2/4 = 0.5
	if first.Similarity != 0.5 {
		t.Errorf("similarity = %v, want 0.5", first.Similarity)
	}
}

func TestRun_BigramsAndTrigrams(t *testing.T) {
	a, store := newTestAnalyzer(t)

	seedRecords(t, store, []*models.StructuredRecord{
		testRecord("page_a_000000000001", "one two three one two three", 6, 1),
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.TopBigrams) == 0 || result.TopBigrams[0].Ngram != "one two" || result.TopBigrams[0].Count != 2 {
		t.Errorf("unexpected top bigram: %+v", result.TopBigrams)
	}

	if len(result.TopTrigrams) == 0 || result.TopTrigrams[0].Ngram != "one two three" || result.TopTrigrams[0].Count != 2 {
		t.Errorf("unexpected top trigram: %+v", result.TopTrigrams)
	}
}

func TestRun_EmptyCorpus(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	seedRecords(t, a.store, nil)

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed on empty corpus: %v", err)
	}

	if result.DocumentsProcessed != 0 || result.TotalWords != 0 {
		t.Errorf("expected zeroed report, got %+v", result)
	}

	if result.Readability.ComplexityScore != 0 {
		t.Errorf("expected zero complexity, got %v", result.Readability.ComplexityScore)
	}
}

func TestRun_WaitsForProcessMarker(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	_, err := a.Run(context.Background())
	if !errors.Is(err, storage.ErrMarkerTimeout) {
		t.Errorf("expected ErrMarkerTimeout, got %v", err)
	}
}

func TestRun_TopWordsDeterministicTieBreak(t *testing.T) {
	a, store := newTestAnalyzer(t)

	seedRecords(t, store, []*models.StructuredRecord{
		testRecord("page_a_000000000001", "zebra apple zebra apple", 4, 1),
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Equal counts break lexicographically.
	if result.TopWords[0].Word != "apple" || result.TopWords[1].Word != "zebra" {
		t.Errorf("tie break not lexicographic: %+v", result.TopWords)
	}
}

func TestRun_CountConsistency(t *testing.T) {
	a, store := newTestAnalyzer(t)

	records := []*models.StructuredRecord{
		testRecord("page_a_000000000001", "one", 1, 1),
		testRecord("page_b_000000000002", "two", 1, 1),
	}

	seedRecords(t, store, records)

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	keys, _ := store.ListRecords()
	if result.DocumentsProcessed != len(keys) {
		t.Errorf("report count %d != records on volume %d", result.DocumentsProcessed, len(keys))
	}
}
