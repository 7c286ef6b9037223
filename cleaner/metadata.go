package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/purify-crawl/purify/models"
	"github.com/purify-crawl/purify/structdata"
)

// extractMetadata builds the flat metadata map spec §4.2 requires, read
// from the document before any cleaning strips <meta>/<link> tags.
func extractMetadata(doc *goquery.Document, sourceURL string) models.Metadata {
	m := models.Metadata{
		SourceURL: sourceURL,
		Language:  structdata.Language(doc),
	}

	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if m.Title == "" {
		m.Title = metaContent(doc, "property", "og:title")
	}

	m.Description = metaContent(doc, "name", "description")
	if m.Description == "" {
		m.Description = metaContent(doc, "property", "og:description")
	}

	m.Author = metaContent(doc, "name", "author")
	m.PublishedDate = firstNonEmpty(
		metaContent(doc, "property", "article:published_time"),
		metaContent(doc, "name", "date"),
	)
	m.Keywords = metaContent(doc, "name", "keywords")
	m.SiteName = metaContent(doc, "property", "og:site_name")
	m.Viewport = metaContent(doc, "name", "viewport")

	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		m.CanonicalURL = href
	}
	m.Favicon = firstNonEmpty(
		attrOf(doc, `link[rel="icon"]`, "href"),
		attrOf(doc, `link[rel="shortcut icon"]`, "href"),
	)
	m.Charset = firstNonEmpty(
		attrOf(doc, `meta[charset]`, "charset"),
		metaContent(doc, "http-equiv", "Content-Type"),
	)

	return m
}

func metaContent(doc *goquery.Document, attr, value string) string {
	return attrOf(doc, `meta[`+attr+`="`+value+`"]`, "content")
}

func attrOf(doc *goquery.Document, selector, attr string) string {
	v, _ := doc.Find(selector).First().Attr(attr)
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
