// Package processor implements the second pipeline stage: turning raw HTML
// pages into structured, immutable records keyed by their source URL.
package processor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pagepipe/internal/models"
	"pagepipe/internal/textutil"
)

// Extraction is the parsed content of one HTML document before it is wrapped
// into a StructuredRecord.
type Extraction struct {
	Title          string
	Text           string
	Links          []string
	Images         []string
	ParagraphCount int
}

// Extract parses HTML and pulls out the visible text, link targets, and
// image sources. Script and style subtrees are dropped before text
// extraction so their contents never pollute the corpus statistics.
func Extract(html []byte) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	extraction := &Extraction{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  normalizeWhitespace(doc.Find("body").Text()),
		// goquery wraps fragments in html/body, so counting block-level
		// nodes works for partial documents too.
		ParagraphCount: doc.Find("p, br, div, li").Length(),
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			extraction.Links = append(extraction.Links, strings.TrimSpace(href))
		}
	})

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
			extraction.Images = append(extraction.Images, strings.TrimSpace(src))
		}
	})

	// A document with text but no block-level markup still counts as a
	// single paragraph.
	if extraction.ParagraphCount == 0 && extraction.Text != "" {
		extraction.ParagraphCount = 1
	}

	return extraction, nil
}

// Statistics computes the per-document text statistics for an extraction.
func (e *Extraction) Statistics() models.TextStatistics {
	tokens := textutil.Tokenize(e.Text)

	return models.TextStatistics{
		WordCount:      len(tokens),
		SentenceCount:  textutil.SentenceCount(e.Text),
		ParagraphCount: e.ParagraphCount,
		AvgWordLength:  textutil.AvgWordLength(tokens),
	}
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
