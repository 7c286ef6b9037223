package cleaner

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ApplyCSSSelector parses rawHTML, matches elements against selector, and
// returns the concatenation of their outer HTML in document order. When
// nothing matches, rawHTML is returned as-is rather than an empty string,
// so a bad or overly specific selector degrades to "no narrowing" instead
// of wiping out the page.
func ApplyCSSSelector(rawHTML, selector string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	return renderNodes(matches)
}

func renderNodes(nodes []*html.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
