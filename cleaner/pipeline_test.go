package cleaner

import (
	"strings"
	"testing"
)

const samplePage = `<html>
<head>
<title>Sample Article</title>
<meta name="description" content="A short description">
<meta name="author" content="Jane Doe">
</head>
<body>
<nav>Home | About | Contact</nav>
<main>
<article>
<h1>Sample Article</h1>
<p>This is the first paragraph of the article body, long enough to read as real content.</p>
<p>Here is a <a href="/related">related link</a> inside the body text.</p>
</article>
</main>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestCleanDefaultProducesMarkdown(t *testing.T) {
	c := NewCleaner()
	data, err := c.Clean(samplePage, "https://x.test/article", "markdown", "readability")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Markdown == "" {
		t.Error("expected non-empty markdown output")
	}
	if data.Metadata.Title == "" {
		t.Error("expected a title to be extracted")
	}
}

func TestCleanHTMLFormatPopulatesHTMLField(t *testing.T) {
	c := NewCleaner()
	data, err := c.Clean(samplePage, "https://x.test/article", "html", "raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.HTML == "" {
		t.Error("expected non-empty HTML output")
	}
	if data.Markdown != "" {
		t.Error("expected Markdown to stay empty for html format")
	}
}

func TestCleanTextFormatUsesMarkdownSlot(t *testing.T) {
	c := NewCleaner()
	data, err := c.Clean(samplePage, "https://x.test/article", "text", "raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Markdown == "" {
		t.Error("expected text output to be carried in the Markdown field")
	}
}

func TestCleanCSSSelectorNarrowsContent(t *testing.T) {
	c := NewCleaner()
	data, err := c.Clean(samplePage, "https://x.test/article", "html", "raw", CleanOptions{
		CSSSelector: "h1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.HTML == "" {
		t.Fatal("expected non-empty HTML output")
	}
	if strings.Contains(data.HTML, "<footer") {
		t.Error("expected css selector to exclude the footer")
	}
}

func TestCleanCitationStyleRewritesLinks(t *testing.T) {
	c := NewCleaner()
	data, err := c.Clean(samplePage, "https://x.test/article", "markdown", "raw", CleanOptions{
		CitationStyle: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(data.Markdown, "[1]:") {
		t.Errorf("expected citation-style reference list in output, got %q", data.Markdown)
	}
}

func TestEstimateTokensNonEmptyText(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
	if got := EstimateTokens("hello world"); got < 1 {
		t.Errorf("expected at least 1 token, got %d", got)
	}
}

