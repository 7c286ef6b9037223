package cleaner

import (
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/purify-crawl/purify/models"
)

// Cleaner orchestrates the Content Extractor (C2) pipeline:
//
//	Stage 0 (metadata):     read title/description/author/... before cleaning
//	Stage 1 (sanitize):     strip noise elements, comments, and attributes
//	Stage 2 (main-select):  narrow to the main content region (only_main)
//	Stage 3 (extract):      readability / pruning / auto / raw
//	Stage 4 (format):       convert clean HTML → Markdown (or html/text pass-through)
//
// The converter is created once and reused across all requests (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: buildMarkdownConverter(),
	}
}

// CleanOptions carries optional content-filtering parameters for the pipeline.
type CleanOptions struct {
	IncludeTags []string
	ExcludeTags []string
	OnlyMain      bool
	CSSSelector   string
	CitationStyle bool
}

// Clean runs the full C2 pipeline and returns the populated portion of
// ScrapeData (Markdown/HTML, Metadata, Tokens). RawHTML, Links and
// StructuredData are assembled elsewhere (the browser Scraper, browser and
// structdata respectively) since they're read from the rendered page, not
// this stage.
func (c *Cleaner) Clean(rawHTML string, sourceURL string, format string, extractMode string, opts ...CleanOptions) (models.ScrapeData, error) {
	var opt CleanOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	// ── 0. Token estimate + metadata, read before any cleaning ──────
	originalTokens := EstimateTokens(rawHTML)

	metaDoc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	var meta models.Metadata
	if err != nil {
		slog.Warn("cleaner: failed to parse HTML for metadata", "url", sourceURL, "error", err)
		meta = models.Metadata{SourceURL: sourceURL}
	} else {
		meta = extractMetadata(metaDoc, sourceURL)
	}

	// ── 0a. CSS selector: narrow to matched elements only ───────────
	if opt.CSSSelector != "" {
		if selected, err := ApplyCSSSelector(rawHTML, opt.CSSSelector); err != nil {
			slog.Warn("cleaner: css selector failed, using full document", "url", sourceURL, "selector", opt.CSSSelector, "error", err)
		} else {
			rawHTML = selected
		}
	}

	// ── 0b. Content filtering (include/exclude tags) ────────────────
	if len(opt.IncludeTags) > 0 || len(opt.ExcludeTags) > 0 {
		rawHTML = FilterContent(rawHTML, opt.IncludeTags, opt.ExcludeTags)
	}

	// ── 1. Sanitize: strip noise, comments, disallowed attributes ───
	workingHTML := rawHTML
	if sanitized, err := sanitizeHTML(rawHTML); err != nil {
		slog.Warn("cleaner: sanitize failed, using raw HTML", "url", sourceURL, "error", err)
	} else if h, err := sanitized.Html(); err == nil {
		workingHTML = h
	}

	// ── 2. only_main: narrow to the main content region ─────────────
	if opt.OnlyMain {
		if mainDoc, err := goquery.NewDocumentFromReader(strings.NewReader(workingHTML)); err == nil {
			if main := selectMainContent(mainDoc); main != "" {
				workingHTML = main
			}
		}
	}

	// ── 3. Content extraction ────────────────────────────────────────
	var article readability.Article
	switch extractMode {
	case "raw":
		// Skip readability; use the sanitized/main-selected HTML as-is.
		article = fallbackArticle(workingHTML)

	case "pruning":
		// Scoring-based content extraction.
		prunedHTML, err := PruneContent(workingHTML, sourceURL)
		if err != nil {
			slog.Warn("pruning: extraction failed, falling back to raw HTML",
				"url", sourceURL, "error", err,
			)
			prunedHTML = workingHTML
		}
		article = readability.Article{
			Title:       meta.Title,
			Excerpt:     meta.Description,
			SiteName:    meta.SiteName,
			Byline:      meta.Author,
			Language:    meta.Language,
			Content:     prunedHTML,
			TextContent: stripTags(prunedHTML),
		}

	case "auto":
		// Run both readability and pruning concurrently, pick the
		// result with more extracted text content.
		article = autoExtract(workingHTML, sourceURL)

	default:
		// "readability" (default).
		article, _ = ExtractContent(workingHTML, sourceURL)
	}

	// ── 4. Format conversion ─────────────────────────────────────────
	var content string

	switch format {
	case "markdown", "":
		content, err = renderMarkdown(c.mdConverter, article.Content, sourceURL)
		if err != nil {
			return models.ScrapeData{}, models.NewScrapeError(
				models.ErrCodeContentExtraction,
				"markdown conversion failed",
				err,
			)
		}
	case "html":
		// Return the extracted, cleaned HTML as-is.
		content = article.Content
	case "text":
		// Return the plain text extracted during content extraction.
		content = article.TextContent
	default:
		// Defensive: treat unknown formats as markdown.
		content, err = renderMarkdown(c.mdConverter, article.Content, sourceURL)
		if err != nil {
			return models.ScrapeData{}, models.NewScrapeError(
				models.ErrCodeContentExtraction,
				"markdown conversion failed",
				err,
			)
		}
	}

	// ── 5. Cleaned token estimate + savings ─────────────────────────
	cleanedTokens := EstimateTokens(content)

	savingsPercent := 0.0
	if originalTokens > 0 {
		savingsPercent = float64(originalTokens-cleanedTokens) / float64(originalTokens) * 100
		savingsPercent = math.Round(savingsPercent*100) / 100
	}

	// Fill in whatever readability/pruning surfaced that the pre-cleaning
	// metadata pass didn't find (title/description/etc. win from meta tags
	// when present; article output only backfills the gaps).
	if meta.Title == "" {
		meta.Title = article.Title
	}
	if meta.Description == "" {
		meta.Description = article.Excerpt
	}
	if meta.SiteName == "" {
		meta.SiteName = article.SiteName
	}
	if meta.Author == "" {
		meta.Author = article.Byline
	}
	if meta.Language == "" {
		meta.Language = article.Language
	}

	data := models.ScrapeData{
		Metadata: meta,
		Tokens: models.TokenInfo{
			OriginalEstimate: originalTokens,
			CleanedEstimate:  cleanedTokens,
			SavingsPercent:   savingsPercent,
		},
	}

	if format == "html" {
		data.HTML = content
	} else {
		// "markdown" (default) and "text" both populate Markdown: the
		// response has no dedicated plain-text field, and text output
		// is just unformatted content in the same slot.
		if opt.CitationStyle && (format == "markdown" || format == "") {
			content = ConvertToCitations(content)
		}
		data.Markdown = content
	}

	return data, nil
}

// autoExtract runs both Readability and Pruning concurrently, then picks the
// result that extracted more meaningful text content.
func autoExtract(rawHTML, sourceURL string) readability.Article {
	var (
		readabilityArticle readability.Article
		prunedHTML         string
		pruneErr           error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		readabilityArticle, _ = ExtractContent(rawHTML, sourceURL)
	}()

	go func() {
		defer wg.Done()
		prunedHTML, pruneErr = PruneContent(rawHTML, sourceURL)
	}()

	wg.Wait()

	// If pruning failed, use readability result.
	if pruneErr != nil {
		slog.Warn("auto: pruning failed, using readability result",
			"url", sourceURL, "error", pruneErr,
		)
		return readabilityArticle
	}

	prunedText := stripTags(prunedHTML)
	readabilityText := strings.TrimSpace(readabilityArticle.TextContent)

	// Pick the result with more extracted text. If readability produced
	// very little (< minContentLength), prefer pruning, and vice versa.
	// When both are substantial, prefer whichever has more content.
	useReadability := len(readabilityText) >= len(prunedText)

	// Quality check: if the longer result is >10x the shorter, it may
	// contain too much noise — prefer the shorter one if it still has
	// a reasonable amount of content.
	if useReadability && len(prunedText) > minContentLength {
		if len(readabilityText) > 10*len(prunedText) {
			useReadability = false
		}
	} else if !useReadability && len(readabilityText) > minContentLength {
		if len(prunedText) > 10*len(readabilityText) {
			useReadability = true
		}
	}

	if useReadability {
		return readabilityArticle
	}

	// Build Article from pruned result, with metadata from readability.
	return readability.Article{
		Title:       readabilityArticle.Title,
		Byline:      readabilityArticle.Byline,
		Excerpt:     readabilityArticle.Excerpt,
		SiteName:    readabilityArticle.SiteName,
		Language:    readabilityArticle.Language,
		Content:     prunedHTML,
		TextContent: prunedText,
	}
}

// stripTags is a simple helper that extracts visible text from an HTML
// fragment by parsing it with goquery. Returns trimmed plain text.
func stripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}
