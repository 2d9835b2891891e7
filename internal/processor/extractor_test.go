package processor

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Sample Page</title>
  <style>body { color: red; }</style>
  <script>var hidden = "should never appear";</script>
</head>
<body>
  <p>First paragraph. Second sentence!</p>
  <div>A div block with <a href="/relative">a link</a>.</div>
  <ul><li>Item one</li><li>Item two</li></ul>
  <img src="/logo.png" alt="logo">
  <a href="http://other.test/page">external</a>
</body>
</html>`

func TestExtract_TextAndTitle(t *testing.T) {
	extraction, err := Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if extraction.Title != "Sample Page" {
		t.Errorf("Title = %q, want 'Sample Page'", extraction.Title)
	}

	if !strings.Contains(extraction.Text, "First paragraph") {
		t.Errorf("text missing paragraph content: %q", extraction.Text)
	}

	if strings.Contains(extraction.Text, "should never appear") {
		t.Error("script content leaked into text")
	}

	if strings.Contains(extraction.Text, "color: red") {
		t.Error("style content leaked into text")
	}

	// Whitespace is collapsed to single spaces.
	if strings.Contains(extraction.Text, "  ") || strings.Contains(extraction.Text, "\n") {
		t.Errorf("text not whitespace-normalized: %q", extraction.Text)
	}
}

func TestExtract_LinksAndImages(t *testing.T) {
	extraction, err := Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(extraction.Links) != 2 {
		t.Fatalf("expected 2 links, got %d: %v", len(extraction.Links), extraction.Links)
	}

	if extraction.Links[0] != "/relative" || extraction.Links[1] != "http://other.test/page" {
		t.Errorf("unexpected links: %v", extraction.Links)
	}

	if len(extraction.Images) != 1 || extraction.Images[0] != "/logo.png" {
		t.Errorf("unexpected images: %v", extraction.Images)
	}
}

func TestExtract_ParagraphCount(t *testing.T) {
	extraction, err := Extract([]byte(samplePage))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// samplePage block nodes: p=1, div=1, li=2.
	if extraction.ParagraphCount != 4 {
		t.Errorf("ParagraphCount = %d, want 4", extraction.ParagraphCount)
	}
}

func TestExtract_BareTextFallsBackToOneParagraph(t *testing.T) {
	extraction, err := Extract([]byte("just some plain text"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if extraction.ParagraphCount != 1 {
		t.Errorf("ParagraphCount = %d, want 1", extraction.ParagraphCount)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	extraction, err := Extract([]byte(""))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if extraction.Text != "" {
		t.Errorf("expected empty text, got %q", extraction.Text)
	}

	if extraction.ParagraphCount != 0 {
		t.Errorf("ParagraphCount = %d, want 0", extraction.ParagraphCount)
	}

	stats := extraction.Statistics()
	if stats.WordCount != 0 || stats.SentenceCount != 0 || stats.AvgWordLength != 0 {
		t.Errorf("expected zeroed statistics, got %+v", stats)
	}
}

func TestStatistics(t *testing.T) {
	extraction, err := Extract([]byte("<p>One two three. Four five!</p>"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	stats := extraction.Statistics()

	if stats.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", stats.WordCount)
	}

	if stats.SentenceCount != 2 {
		t.Errorf("SentenceCount = %d, want 2", stats.SentenceCount)
	}

	// (3+3+5+4+4)/5 = 3.8
	if stats.AvgWordLength != 3.8 {
		t.Errorf("AvgWordLength = %v, want 3.8", stats.AvgWordLength)
	}
}
