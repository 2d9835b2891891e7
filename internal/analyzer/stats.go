// Package analyzer implements the terminal pipeline stage: corpus-level
// statistics over every structured record, written as a single report.
package analyzer

import (
	"sort"
	"time"

	"pagepipe/internal/models"
	"pagepipe/internal/textutil"
)

// document is one record reduced to what the corpus statistics need.
type document struct {
	key    string
	tokens []string
}

// corpus accumulates counts across all documents.
type corpus struct {
	docs           []document
	wordCounts     map[string]int
	bigramCounts   map[string]int
	trigramCounts  map[string]int
	totalWords     int
	totalWordLen   int
	totalSentences int
	ngramSizes     []int
}

func newCorpus(ngramSizes []int) *corpus {
	return &corpus{
		wordCounts:    map[string]int{},
		bigramCounts:  map[string]int{},
		trigramCounts: map[string]int{},
		ngramSizes:    ngramSizes,
	}
}

// add folds one structured record into the corpus. Per-document counts come
// from the record's stored statistics; token-level counters are recomputed
// from the text so word frequencies and n-grams stay consistent with each
// other.
func (c *corpus) add(record *models.StructuredRecord) {
	tokens := textutil.TokenizeLower(record.Text)

	for _, token := range tokens {
		c.wordCounts[token]++
		c.totalWordLen += len(token)
	}

	for _, n := range c.ngramSizes {
		counts := c.ngramCounter(n)
		if counts == nil {
			continue
		}

		for _, gram := range textutil.Ngrams(tokens, n) {
			counts[gram]++
		}
	}

	wordCount := record.Statistics.WordCount
	if wordCount == 0 {
		wordCount = len(tokens)
	}

	c.totalWords += wordCount

	if record.Statistics.SentenceCount > 0 {
		c.totalSentences += record.Statistics.SentenceCount
	}

	c.docs = append(c.docs, document{key: record.Key, tokens: tokens})
}

func (c *corpus) ngramCounter(n int) map[string]int {
	switch n {
	case 2:
		return c.bigramCounts
	case 3:
		return c.trigramCounts
	default:
		return nil
	}
}

// report assembles the final Report. Output ordering is deterministic:
// counts descend, ties break lexicographically, and similarity pairs follow
// sorted document-key order.
func (c *corpus) report(topN int, similarity bool) *models.Report {
	report := &models.Report{
		ProcessingTimestamp: time.Now().UTC(),
		DocumentsProcessed:  len(c.docs),
		TotalWords:          c.totalWords,
		UniqueWords:         len(c.wordCounts),
		TopWords:            c.topWords(topN),
		TopBigrams:          topNgrams(c.bigramCounts, topN),
		TopTrigrams:         topNgrams(c.trigramCounts, topN),
		Readability:         c.readability(),
	}

	if similarity {
		report.DocumentSimilarity = c.similarities()
	} else {
		report.DocumentSimilarity = []models.SimilarityPair{}
	}

	return report
}

func (c *corpus) topWords(topN int) []models.WordCount {
	words := make([]models.WordCount, 0, len(c.wordCounts))

	for word, count := range c.wordCounts {
		frequency := 0.0
		if c.totalWords > 0 {
			frequency = textutil.Round(float64(count)/float64(c.totalWords), 6)
		}

		words = append(words, models.WordCount{Word: word, Count: count, Frequency: frequency})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}

		return words[i].Word < words[j].Word
	})

	if len(words) > topN {
		words = words[:topN]
	}

	return words
}

func topNgrams(counts map[string]int, topN int) []models.NgramCount {
	grams := make([]models.NgramCount, 0, len(counts))

	for gram, count := range counts {
		grams = append(grams, models.NgramCount{Ngram: gram, Count: count})
	}

	sort.Slice(grams, func(i, j int) bool {
		if grams[i].Count != grams[j].Count {
			return grams[i].Count > grams[j].Count
		}

		return grams[i].Ngram < grams[j].Ngram
	})

	if len(grams) > topN {
		grams = grams[:topN]
	}

	return grams
}

func (c *corpus) similarities() []models.SimilarityPair {
	pairs := make([]models.SimilarityPair, 0)

	for i := 0; i < len(c.docs); i++ {
		for j := i + 1; j < len(c.docs); j++ {
			pairs = append(pairs, models.SimilarityPair{
				Doc1: c.docs[i].key,
				Doc2: c.docs[j].key,
				Similarity: textutil.Round(
					textutil.JaccardSimilarity(c.docs[i].tokens, c.docs[j].tokens), 6),
			})
		}
	}

	return pairs
}

func (c *corpus) readability() models.Readability {
	avgSentenceLength := 0.0
	if c.totalSentences > 0 {
		avgSentenceLength = float64(c.totalWords) / float64(c.totalSentences)
	}

	avgWordLength := 0.0

	tokenTotal := 0
	for _, doc := range c.docs {
		tokenTotal += len(doc.tokens)
	}

	if tokenTotal > 0 {
		avgWordLength = float64(c.totalWordLen) / float64(tokenTotal)
	}

	return models.Readability{
		AvgSentenceLength: textutil.Round(avgSentenceLength, 6),
		AvgWordLength:     textutil.Round(avgWordLength, 6),
		ComplexityScore:   textutil.Round(avgSentenceLength*avgWordLength, 6),
	}
}
