package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// allowedAttrs is the attribute allowlist spec §4.2's cleaning step names;
// everything else is dropped from every surviving element.
var allowedAttrs = map[string]struct{}{
	"href": {}, "src": {}, "alt": {}, "title": {}, "class": {},
	"id": {}, "role": {}, "type": {}, "rel": {}, "target": {},
}

// noiseSelectors are elements removed outright regardless of content.
// meta/link are included here because sanitizeHTML always runs after
// metadata has already been extracted from the untouched document.
var noiseSelectors = []string{"script", "style", "iframe", "noscript", "meta", "link"}

// chromeSelectors are removed only when they do not contain a descendant
// main/article/section, per spec §4.2.
var chromeSelectors = []string{"nav", "footer", "header"}

// sanitizeHTML applies spec §4.2's cleaning step: strip noise elements and
// HTML comments, conditionally strip nav/footer/header, and restrict every
// surviving element's attributes to the allowlist (plus data-*/aria-*).
func sanitizeHTML(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range chromeSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if s.Find("main, article, section").Length() == 0 {
				s.Remove()
			}
		})
	}

	for _, n := range doc.Nodes {
		stripComments(n)
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		node.Attr = filterAttrs(node.Attr)
	})

	return doc, nil
}

func stripComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			stripComments(c)
		}
		c = next
	}
}

var dataOrAriaAttr = regexp.MustCompile(`^(data|aria)-`)

func filterAttrs(attrs []html.Attribute) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if _, ok := allowedAttrs[key]; ok || dataOrAriaAttr.MatchString(key) {
			out = append(out, a)
		}
	}
	return out
}
