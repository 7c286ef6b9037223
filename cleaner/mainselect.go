package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var contentClassIDRe = regexp.MustCompile(`(?i)content|main|article`)

// selectMainContent implements spec §4.2's only_main priority chain:
// <main> → <article> → a <div> whose id/class matches content|main|article
// → role="main" → the single div/section with the largest text content.
// Returns "" if nothing in the document qualifies (caller keeps the full
// document in that case).
func selectMainContent(doc *goquery.Document) string {
	if sel := doc.Find("main").First(); sel.Length() > 0 {
		return outerHTML(sel)
	}
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return outerHTML(sel)
	}

	var byClassOrID *goquery.Selection
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		class, _ := s.Attr("class")
		if contentClassIDRe.MatchString(id) || contentClassIDRe.MatchString(class) {
			sel := s
			byClassOrID = sel
			return false
		}
		return true
	})
	if byClassOrID != nil {
		return outerHTML(byClassOrID)
	}

	if sel := doc.Find(`[role="main"]`).First(); sel.Length() > 0 {
		return outerHTML(sel)
	}

	var largest *goquery.Selection
	largestLen := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		n := len(strings.TrimSpace(s.Text()))
		if n > largestLen {
			largestLen = n
			largest = s
		}
	})
	if largest != nil {
		return outerHTML(largest)
	}

	return ""
}

func outerHTML(s *goquery.Selection) string {
	h, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	return h
}
