package models

import "time"

// Report is the single terminal artifact of the pipeline: corpus-level
// statistics over every structured record the processor produced.
type Report struct {
	ProcessingTimestamp time.Time        `json:"processing_timestamp"`
	DocumentsProcessed  int              `json:"documents_processed"`
	TotalWords          int              `json:"total_words"`
	UniqueWords         int              `json:"unique_words"`
	TopWords            []WordCount      `json:"top_words"`
	DocumentSimilarity  []SimilarityPair `json:"document_similarity"`
	TopBigrams          []NgramCount     `json:"top_bigrams"`
	TopTrigrams         []NgramCount     `json:"top_trigrams"`
	Readability         Readability      `json:"readability"`
}

// WordCount pairs a token with its corpus count and relative frequency.
type WordCount struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// NgramCount pairs an n-gram (tokens joined by single spaces) with its count.
type NgramCount struct {
	Ngram string `json:"ngram"`
	Count int    `json:"count"`
}

// SimilarityPair holds the Jaccard similarity between two documents,
// identified by their artifact keys.
type SimilarityPair struct {
	Doc1       string  `json:"doc1"`
	Doc2       string  `json:"doc2"`
	Similarity float64 `json:"similarity"`
}

// Readability aggregates corpus-level readability metrics.
type Readability struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	ComplexityScore   float64 `json:"complexity_score"`
}
