package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent narrows raw HTML to the caller's include/exclude tag lists
// (the request's `include_tags`/`exclude_tags` options), before any other
// cleaning stage runs. Excluded elements are dropped first; if includeTags
// is non-empty, only the outer HTML of matching elements survives. Returns
// html unchanged when both lists are empty, or when parsing fails.
func FilterContent(html string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	dropExcluded(doc, excludeTags)

	if narrowed, ok := keepIncluded(doc, includeTags); ok {
		return narrowed
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}
	return result
}

func dropExcluded(doc *goquery.Document, excludeTags []string) {
	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}
}

// keepIncluded collects the outer HTML of every element matching
// includeTags. ok is false when includeTags is empty or nothing matched,
// telling the caller to fall back to the (already exclude-filtered) whole
// document instead.
func keepIncluded(doc *goquery.Document, includeTags []string) (string, bool) {
	if len(includeTags) == 0 {
		return "", false
	}

	matches := doc.Find(strings.Join(includeTags, ", "))
	if matches.Length() == 0 {
		return "", false
	}

	var buf strings.Builder
	matches.Each(func(_ int, s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			buf.WriteString(h)
		}
	})
	return buf.String(), true
}
