package cleaner

import (
	"fmt"
	"regexp"
	"strings"
)

// inlineLinkPattern matches Markdown inline links of the form [text](url).
var inlineLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// citationRewriter tracks which URLs have already been assigned a reference
// number, so repeated links collapse onto a single footnote.
type citationRewriter struct {
	numberOf map[string]int
	footer   []string
}

func newCitationRewriter() *citationRewriter {
	return &citationRewriter{numberOf: make(map[string]int)}
}

// rewrite replaces one [text](url) match with its [text][n] form, minting a
// new footnote entry the first time url is seen.
func (cr *citationRewriter) rewrite(match string) string {
	parts := inlineLinkPattern.FindStringSubmatch(match)
	if len(parts) != 3 {
		return match
	}
	text, url := parts[1], parts[2]

	n, ok := cr.numberOf[url]
	if !ok {
		n = len(cr.numberOf) + 1
		cr.numberOf[url] = n
		cr.footer = append(cr.footer, fmt.Sprintf("[%d]: %s", n, url))
	}
	return fmt.Sprintf("[%s][%d]", text, n)
}

// ConvertToCitations rewrites every inline Markdown link in markdown to a
// numbered reference and appends a footnote block listing each distinct
// URL once, e.g.:
//
//	in:  "See [Google](https://google.com) and [GitHub](https://github.com)"
//	out: "See [Google][1] and [GitHub][2]\n\n---\n[1]: https://google.com\n[2]: https://github.com"
func ConvertToCitations(markdown string) string {
	cr := newCitationRewriter()
	body := inlineLinkPattern.ReplaceAllStringFunc(markdown, cr.rewrite)

	if len(cr.footer) == 0 {
		return markdown
	}
	return body + "\n\n---\n" + strings.Join(cr.footer, "\n")
}
