package cleaner

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pruneScoreThreshold is the minimum weighted score a top-level block must
// clear to be kept as main content; anything at or below it is treated as
// boilerplate (nav, sidebar, footer, ads, ...).
const pruneScoreThreshold = 0.0

// pruneWeights are the signal weights the scorer combines linearly.
type pruneWeights struct {
	textDensity float64
	linkDensity float64
	tag         float64
	classID     float64
	textLength  float64
}

var defaultPruneWeights = pruneWeights{
	textDensity: 3.0,
	linkDensity: -2.0,
	tag:         1.5,
	classID:     1.0,
	textLength:  0.5,
}

// contentClassHints and boilerplateClassHints are substrings checked
// against an element's class/id attributes.
var contentClassHints = []string{"content", "article", "post", "entry", "body", "main", "text"}
var boilerplateClassHints = []string{
	"sidebar", "ad", "widget", "nav", "menu", "comment", "footer",
	"header", "banner", "popup", "modal", "cookie", "social", "share",
	"related", "recommend", "promo",
}

// contentTagBonus and boilerplateTagPenalty score an element purely by tag
// name, ahead of any class/id inspection.
var contentTagBonus = map[string]bool{"article": true, "main": true, "section": true}
var boilerplateTagPenalty = map[string]bool{"nav": true, "footer": true, "aside": true, "header": true}

// PruneContent extracts main content from rawHTML by scoring each top-level
// element under <body> on text density, link density, tag semantics, and
// class/id hints, keeping only blocks above pruneScoreThreshold. Falls back
// to the full body (or the untouched input, if there's no <body> at all)
// when nothing clears the bar, so the pipeline never hands back nothing.
func PruneContent(rawHTML, sourceURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML, err
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return rawHTML, nil
	}

	scorer := blockScorer{weights: defaultPruneWeights}
	var kept []string
	body.Children().Each(func(_ int, el *goquery.Selection) {
		if scorer.score(el) <= pruneScoreThreshold {
			return
		}
		if outer, err := goquery.OuterHtml(el); err == nil {
			kept = append(kept, outer)
		}
	})

	if len(kept) == 0 {
		fallback, err := body.Html()
		if err != nil {
			return rawHTML, nil
		}
		return fallback, nil
	}

	return strings.Join(kept, "\n"), nil
}

// blockScorer computes a weighted content score for one DOM element.
type blockScorer struct {
	weights pruneWeights
}

func (s blockScorer) score(el *goquery.Selection) float64 {
	outer, err := goquery.OuterHtml(el)
	if err != nil {
		return 0
	}
	text := strings.TrimSpace(el.Text())

	return s.weights.textDensity*textDensityOf(text, outer) +
		s.weights.linkDensity*linkDensityOf(el, text) +
		s.weights.tag*tagScore(el) +
		s.weights.classID*classIDScore(el) +
		s.weights.textLength*math.Log10(float64(len(text))+1)
}

func textDensityOf(text, outerHTML string) float64 {
	if len(outerHTML) == 0 {
		return 0
	}
	return float64(len(text)) / float64(len(outerHTML))
}

func linkDensityOf(el *goquery.Selection, text string) float64 {
	if len(text) == 0 {
		return 0
	}
	var linkChars int
	el.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkChars += len(strings.TrimSpace(a.Text()))
	})
	return float64(linkChars) / float64(len(text))
}

func tagScore(el *goquery.Selection) float64 {
	tag := goquery.NodeName(el)
	switch {
	case contentTagBonus[tag]:
		return 5.0
	case boilerplateTagPenalty[tag]:
		return -5.0
	default:
		return 0.0
	}
}

// classIDScore scans the element's class and id attributes for substrings
// indicating content vs. boilerplate, counting at most one hit per
// direction so a single element can't dominate the score by attribute
// stuffing.
func classIDScore(el *goquery.Selection) float64 {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	combined := strings.ToLower(class + " " + id)

	var score float64
	for _, hint := range contentClassHints {
		if strings.Contains(combined, hint) {
			score += 3.0
			break
		}
	}
	for _, hint := range boilerplateClassHints {
		if strings.Contains(combined, hint) {
			score -= 3.0
			break
		}
	}
	return score
}
