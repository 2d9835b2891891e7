// Package report renders the final corpus report in human-readable formats.
package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nao1215/markdown"

	"pagepipe/internal/formatter"
	"pagepipe/internal/models"
)

// maxTableRows caps the rows rendered per Markdown table so the document
// stays readable; the JSON report remains the complete record.
const maxTableRows = 25

// RenderMarkdown renders the report as a Markdown document with aligned
// tables.
func RenderMarkdown(r *models.Report) (string, error) {
	var buf bytes.Buffer

	md := markdown.NewMarkdown(&buf)

	md.H1("Corpus Analysis Report")
	md.PlainText("")

	writeSummary(md, r)
	writeTopWords(md, r)
	writeNgrams(md, "Top Bigrams", r.TopBigrams)
	writeNgrams(md, "Top Trigrams", r.TopTrigrams)
	writeSimilarity(md, r)
	writeReadability(md, r)

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to render markdown report: %w", err)
	}

	return formatter.AlignTables(buf.String()), nil
}

func writeSummary(md *markdown.Markdown, r *models.Report) {
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Generated", r.ProcessingTimestamp.Format("2006-01-02 15:04:05 MST")},
			{"Documents processed", strconv.Itoa(r.DocumentsProcessed)},
			{"Total words", strconv.Itoa(r.TotalWords)},
			{"Unique words", strconv.Itoa(r.UniqueWords)},
		},
	})
	md.PlainText("")
}

func writeTopWords(md *markdown.Markdown, r *models.Report) {
	md.H2("Top Words")
	md.PlainText("")

	if len(r.TopWords) == 0 {
		md.PlainText("No words in corpus.")
		md.PlainText("")

		return
	}

	rows := make([][]string, 0, len(r.TopWords))

	for i, w := range r.TopWords {
		if i >= maxTableRows {
			break
		}

		rows = append(rows, []string{
			w.Word,
			strconv.Itoa(w.Count),
			strconv.FormatFloat(w.Frequency, 'f', 6, 64),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Word", "Count", "Frequency"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeNgrams(md *markdown.Markdown, title string, grams []models.NgramCount) {
	md.H2(title)
	md.PlainText("")

	if len(grams) == 0 {
		md.PlainText("None found.")
		md.PlainText("")

		return
	}

	rows := make([][]string, 0, len(grams))

	for i, g := range grams {
		if i >= maxTableRows {
			break
		}

		rows = append(rows, []string{g.Ngram, strconv.Itoa(g.Count)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Ngram", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeSimilarity(md *markdown.Markdown, r *models.Report) {
	md.H2("Document Similarity")
	md.PlainText("")

	if len(r.DocumentSimilarity) == 0 {
		md.PlainText("Fewer than two documents; no pairs to compare.")
		md.PlainText("")

		return
	}

	rows := make([][]string, 0, len(r.DocumentSimilarity))

	for i, p := range r.DocumentSimilarity {
		if i >= maxTableRows {
			break
		}

		rows = append(rows, []string{
			p.Doc1,
			p.Doc2,
			strconv.FormatFloat(p.Similarity, 'f', 6, 64),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document A", "Document B", "Jaccard"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeReadability(md *markdown.Markdown, r *models.Report) {
	md.H2("Readability")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Avg sentence length", strconv.FormatFloat(r.Readability.AvgSentenceLength, 'f', 6, 64)},
			{"Avg word length", strconv.FormatFloat(r.Readability.AvgWordLength, 'f', 6, 64)},
			{"Complexity score", strconv.FormatFloat(r.Readability.ComplexityScore, 'f', 6, 64)},
		},
	})
}
