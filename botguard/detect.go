// Package botguard implements the Bot-Protection Handler (C4): family-scored
// challenge detection and a mitigation strategy sequence. It has no teacher
// equivalent — grounded on original_source/services/scraper/scraper.py's
// EnhancedBotDetectionHandler, rebuilt with go-rod primitives in the style
// of the teacher's scraper/actions.go rather than translated from Python.
package botguard

import (
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/purify-crawl/purify/metrics"
)

// Family identifies a bot-protection vendor/category.
type Family string

const (
	FamilyNone            Family = ""
	FamilyCloudflare      Family = "cloudflare"
	FamilyDataDome        Family = "datadome"
	FamilyIncapsula       Family = "incapsula"
	FamilyAkamai          Family = "akamai"
	FamilyGenericCaptcha  Family = "generic_captcha"
)

const detectionThreshold = 30

const (
	scoreSelector     = 20
	scoreTextPattern  = 15
	scoreTitlePhrase  = 25
)

// rule is one protection family's detection signature.
type rule struct {
	family    Family
	selectors []string
	patterns  []*regexp.Regexp
}

var rules = []rule{
	{
		family: FamilyCloudflare,
		selectors: []string{
			"#challenge-form", "#challenge-running",
			"div[class*='cf-browser-verification']", "#cf-challenge-running",
			".cf-browser-verification", "#cf-challenge-stage",
			".cf-checking-browser", ".cf-wrapper",
		},
		patterns: compilePatterns(
			`cloudflare`, `ray id:`, `please wait while we verify`,
			`please enable cookies`, `please complete the security check`,
			`checking your browser`, `just a moment`, `attention required`,
			`cf-browser-verification`, `cf-challenge-running`,
		),
	},
	{
		family:    FamilyDataDome,
		selectors: []string{"[class*='datadome']", "[id*='datadome']", ".dd-challenge"},
		patterns: compilePatterns(
			`datadome`, `access denied`, `blocked by datadome`, `captcha.*datadome`,
		),
	},
	{
		family:    FamilyIncapsula,
		selectors: []string{"[class*='incap']", "[id*='incap']", ".incap-challenge"},
		patterns: compilePatterns(
			`incapsula`, `incap_ses`, `visid_incap`, `blocked by incapsula`,
		),
	},
	{
		family:    FamilyAkamai,
		selectors: nil,
		patterns: compilePatterns(
			`akamai`, `ak-bmsc`, `akamai.*bot.*manager`,
		),
	},
	{
		family: FamilyGenericCaptcha,
		selectors: []string{
			"[class*='captcha']", "[class*='challenge']", "[class*='verification']",
			"[class*='security-check']", "iframe[src*='recaptcha']",
			"iframe[src*='hcaptcha']", ".g-recaptcha", ".h-captcha",
		},
		patterns: compilePatterns(
			`captcha`, `recaptcha`, `hcaptcha`, `security check`, `verify.*human`,
		),
	},
}

var cloudflareTitlePhrases = []string{"just a moment", "attention required", "checking your browser"}

func compilePatterns(raw ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(raw))
	for _, r := range raw {
		out = append(out, regexp.MustCompile("(?i)"+r))
	}
	return out
}

// Detection is the outcome of one detection pass.
type Detection struct {
	Detected  bool
	Family    Family
	Score     int
	Selectors []string
	Patterns  []string
}

// Detect inspects the rendered page against every family's rule set and
// returns the highest-scoring family, per spec §4.4. Below threshold ⇒
// Detected is false.
func Detect(page *rod.Page) Detection {
	title := strings.ToLower(evalStringOrEmpty(page, `() => document.title`))
	html, err := page.HTML()
	if err != nil {
		html = ""
	}
	source := strings.ToLower(html)

	best := Detection{}
	for _, r := range rules {
		score := 0
		var foundSelectors, foundPatterns []string

		for _, sel := range r.selectors {
			if elementPresent(page, sel) {
				foundSelectors = append(foundSelectors, sel)
				score += scoreSelector
			}
		}
		for _, pat := range r.patterns {
			if pat.MatchString(source) {
				foundPatterns = append(foundPatterns, pat.String())
				score += scoreTextPattern
			}
		}
		if r.family == FamilyCloudflare {
			for _, phrase := range cloudflareTitlePhrases {
				if strings.Contains(title, phrase) {
					score += scoreTitlePhrase
					foundPatterns = append(foundPatterns, "title:"+phrase)
					break
				}
			}
		}

		if score > best.Score {
			best = Detection{
				Family:    r.family,
				Score:     score,
				Selectors: foundSelectors,
				Patterns:  foundPatterns,
			}
		}
	}

	best.Detected = best.Score > detectionThreshold
	if best.Detected {
		metrics.CloudflareChallengesTotal.WithLabelValues(string(best.Family)).Inc()
	}
	return best
}

// elementPresent reports whether any element matches selector, without
// waiting for it to appear (a non-blocking presence check).
func elementPresent(page *rod.Page, selector string) bool {
	els, err := page.Elements(selector)
	if err != nil {
		return false
	}
	return len(els) > 0
}

func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
