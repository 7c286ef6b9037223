package botguard

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/purify-crawl/purify/metrics"
)

var iframeSelectors = []string{
	"iframe[title*='challenge']", "iframe[src*='challenge']",
	"iframe[src*='cloudflare']", "iframe[src*='cf-challenge']",
}

var checkboxSelectors = []string{
	"input[type='checkbox']", ".checkbox", "[class*='checkbox']",
	"#challenge-form input", ".cf-turnstile", "[data-ray]",
	".cf-challenge-running input",
}

var turnstileSelectors = []string{".cf-turnstile", "[data-sitekey]"}

// mitigate runs the four strategies in order for the detected family, per
// spec §4.4. It always attempts all four regardless of family — only the
// selectors differ in what they match, mirroring original_source's
// solve_cloudflare_challenge being reused as the generic fallback for every
// family.
func mitigate(page *rod.Page) {
	mitigateIframeCheckbox(page)
	mitigateTopFrameCheckbox(page)
	mitigateTurnstilePassiveWait(page)
	mitigateHumanBehavior(page)
}

// mitigateIframeCheckbox: strategy 1 — enter any matching iframe, find and
// click a checkbox, return to the top frame.
func mitigateIframeCheckbox(page *rod.Page) {
	for _, iframeSel := range iframeSelectors {
		els, err := page.Elements(iframeSel)
		if err != nil || len(els) == 0 {
			continue
		}
		frame, err := els[0].Frame()
		if err != nil {
			continue
		}
		if clickFirstVisible(frame, checkboxSelectors) {
			return
		}
	}
}

// mitigateTopFrameCheckbox: strategy 2 — same checkbox selectors in the
// top-level document.
func mitigateTopFrameCheckbox(page *rod.Page) {
	clickFirstVisible(page, checkboxSelectors)
}

// mitigateTurnstilePassiveWait: strategy 3 — Turnstile challenges usually
// self-complete; just wait.
func mitigateTurnstilePassiveWait(page *rod.Page) {
	for _, sel := range turnstileSelectors {
		els, err := page.Elements(sel)
		if err == nil && len(els) > 0 {
			time.Sleep(3 * time.Second)
			return
		}
	}
}

// mitigateHumanBehavior: strategy 4 — small random scroll then back, to
// nudge behavioral-analysis challenges.
func mitigateHumanBehavior(page *rod.Page) {
	_, _ = page.Eval(`() => window.scrollTo(0, Math.random() * 100)`)
	time.Sleep(time.Duration(500+rand.Intn(500)) * time.Millisecond)
	_, _ = page.Eval(`() => window.scrollTo(0, 0)`)
}

// clickFirstVisible clicks the first visible element matching any selector,
// with a randomized 0.5-1.5s human-like delay before the click.
func clickFirstVisible(page *rod.Page, selectors []string) bool {
	for _, sel := range selectors {
		els, err := page.Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		el := els[0]
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		time.Sleep(time.Duration(500+rand.Intn(1000)) * time.Millisecond)
		if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
			return true
		}
	}
	return false
}

const maxMitigationAttempts = 5

// Await polls detection up to timeout, re-running the mitigation sequence
// between polls, per spec §4.4's completion-wait contract: growing poll
// interval (2-5s), attempt counter reset on family change, max 5 attempts
// per type, success when no family scores above threshold.
func Await(ctx context.Context, page *rod.Page, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	attempts := 0
	var lastFamily Family

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		det := Detect(page)
		if !det.Detected {
			if lastFamily != "" {
				metrics.CloudflareBypassSuccessTotal.WithLabelValues(string(lastFamily)).Inc()
			}
			return true
		}

		if lastFamily != "" && lastFamily != det.Family {
			attempts = 0
		}
		lastFamily = det.Family

		if attempts < maxMitigationAttempts {
			mitigate(page)
			attempts++
			time.Sleep(time.Duration(2000+rand.Intn(2000)) * time.Millisecond)
		}

		waitMs := 2000 + attempts*500
		if waitMs > 5000 {
			waitMs = 5000
		}
		time.Sleep(time.Duration(waitMs) * time.Millisecond)
	}
	if lastFamily != "" {
		metrics.CloudflareBypassFailureTotal.WithLabelValues(string(lastFamily)).Inc()
	}
	return false
}
