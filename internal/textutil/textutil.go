// Package textutil provides the tokenization and counting primitives shared
// by the processor and analyzer stages.
package textutil

import (
	"regexp"
	"strings"
)

// wordRe matches alphanumeric token sequences only; punctuation and
// whitespace separate tokens.
var wordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// sentenceRe splits text on runs of sentence-ending punctuation.
var sentenceRe = regexp.MustCompile(`[.!?]+`)

// Tokenize returns the alphanumeric tokens of text, in order.
func Tokenize(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// TokenizeLower returns lowercased tokens, as used for corpus statistics.
func TokenizeLower(text string) []string {
	tokens := Tokenize(text)
	for i, token := range tokens {
		tokens[i] = strings.ToLower(token)
	}

	return tokens
}

// WordCount returns the number of alphanumeric tokens in text.
func WordCount(text string) int {
	return len(Tokenize(text))
}

// SentenceCount returns the number of non-empty segments after splitting on
// sentence-ending punctuation.
func SentenceCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	count := 0

	for _, part := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}

	return count
}

// AvgWordLength returns the mean token length rounded to three decimals,
// or zero for empty input.
func AvgWordLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0.0
	}

	total := 0
	for _, token := range tokens {
		total += len(token)
	}

	return Round(float64(total)/float64(len(tokens)), 3)
}

// Ngrams returns the n-grams of tokens joined by single spaces.
func Ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}

	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}

	return grams
}

// JaccardSimilarity returns |A∩B| / |A∪B| over the token sets of two
// documents, or zero when both are empty.
func JaccardSimilarity(doc1, doc2 []string) float64 {
	set1 := toSet(doc1)
	set2 := toSet(doc2)

	intersection := 0

	for token := range set1 {
		if _, ok := set2[token]; ok {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}

	return set
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	factor := 1.0
	for i := 0; i < places; i++ {
		factor *= 10
	}

	if v >= 0 {
		return float64(int64(v*factor+0.5)) / factor
	}

	return float64(int64(v*factor-0.5)) / factor
}
