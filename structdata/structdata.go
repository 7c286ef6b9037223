// Package structdata implements the Structured-Data Extractor (C3): given
// raw HTML, produce JSON-LD objects, OpenGraph fields, Twitter Card fields,
// and a generic meta map. Grounded on original_source's
// services/extractors/structured_data.py (StructuredDataExtractor), adapted
// to goquery instead of BeautifulSoup.
package structdata

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredData is the four-field contract spec §4.3 mandates. Failure at
// any sub-step yields an empty slot in its field; extraction never fails
// the enclosing scrape.
type StructuredData struct {
	JSONLD      []map[string]any `json:"json_ld"`
	OpenGraph   map[string]string `json:"open_graph"`
	TwitterCard map[string]string `json:"twitter_card"`
	Meta        map[string]string `json:"meta"`
}

// Extract parses html and returns the structured-data contract. It never
// returns an error: per-field failures are logged and the field is left
// empty rather than propagated.
func Extract(html string) StructuredData {
	data := StructuredData{
		JSONLD:      []map[string]any{},
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
		Meta:        map[string]string{"language": ""},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("structdata: failed to parse HTML", "error", err)
		return data
	}

	data.JSONLD = extractJSONLD(doc)
	data.OpenGraph = extractOpenGraph(doc)
	data.TwitterCard = extractTwitterCard(doc)
	data.Meta = extractMeta(doc)

	return data
}

// extractJSONLD parses every <script type="application/ld+json"> tag.
// Invalid JSON in one script tag is logged and skipped; it never aborts
// the rest of the extraction.
func extractJSONLD(doc *goquery.Document) []map[string]any {
	out := []map[string]any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &obj); err != nil {
			slog.Debug("structdata: invalid JSON-LD, skipping", "error", err)
			return
		}
		out = append(out, obj)
	})
	return out
}

// extractOpenGraph collects every meta[property^=og:] tag, stripping the
// "og:" prefix from the key.
func extractOpenGraph(doc *goquery.Document) map[string]string {
	og := map[string]string{}
	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if !strings.HasPrefix(prop, "og:") || content == "" {
			return
		}
		og[strings.TrimPrefix(prop, "og:")] = content
	})
	return og
}

// extractTwitterCard collects every meta[name^=twitter:] tag, stripping the
// "twitter:" prefix from the key.
func extractTwitterCard(doc *goquery.Document) map[string]string {
	tw := map[string]string{}
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		if !strings.HasPrefix(name, "twitter:") || content == "" {
			return
		}
		tw[strings.TrimPrefix(name, "twitter:")] = content
	})
	return tw
}

// extractMeta collects every other <meta name|property> pair (not og:* or
// twitter:*), and always sets "language" — empty string if unknown, never
// absent — via the same fallback chain the Content Extractor uses.
func extractMeta(doc *goquery.Document) map[string]string {
	meta := map[string]string{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, hasName := s.Attr("name")
		if !hasName {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name == "" || content == "" {
			return
		}
		if strings.HasPrefix(name, "og:") || strings.HasPrefix(name, "twitter:") {
			return
		}
		meta[name] = content
	})
	meta["language"] = extractLanguage(doc)
	return meta
}

// Language runs the <html lang> → meta[http-equiv=content-language] →
// meta[name=language] → meta[property=og:locale] → "" fallback chain spec
// §4.2's metadata extraction shares with §4.3's meta map. Exported so the
// Content Extractor (C2) can reuse the exact same resolution order.
func Language(doc *goquery.Document) string {
	return extractLanguage(doc)
}

// extractLanguage follows the fallback chain: <html lang>, then
// meta[http-equiv=content-language], meta[name=language], OG locale; empty
// string if none found.
func extractLanguage(doc *goquery.Document) string {
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		return strings.SplitN(lang, "-", 2)[0]
	}
	if content, ok := doc.Find(`meta[http-equiv="content-language"]`).Attr("content"); ok && content != "" {
		return strings.SplitN(content, "_", 2)[0]
	}
	if content, ok := doc.Find(`meta[name="language"]`).Attr("content"); ok && content != "" {
		return strings.SplitN(content, "_", 2)[0]
	}
	if content, ok := doc.Find(`meta[property="og:locale"]`).Attr("content"); ok && content != "" {
		return strings.SplitN(content, "_", 2)[0]
	}
	return ""
}
