package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/purify-crawl/purify/botguard"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/metrics"
	"github.com/purify-crawl/purify/models"
)

// Context is the Browser Context (C5): one pooled page, wrapped with the
// navigate/page-source/screenshot/cleanup operations spec §4.5 defines.
// Adapted from scraper/page.go's doScrapeRod.
type Context struct {
	handle *Handle
	cfg    config.ScraperConfig
}

func newContext(h *Handle, cfg config.ScraperConfig) *Context {
	return &Context{handle: h, cfg: cfg}
}

// Navigate loads url within timeout, waits for DOM-ready, runs bot-protection
// detection and mitigation if challenged, then captures HTML,
// links, status code, and (if requested) a screenshot. On a navigation
// timeout it stops the page, doubles the timeout, and retries exactly
// once, per spec §4.5.
func (c *Context) Navigate(parent context.Context, req *models.ScrapeRequest) (*NavigationResult, error) {
	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	if c.cfg.MaxTimeout > 0 && timeout > c.cfg.MaxTimeout {
		timeout = c.cfg.MaxTimeout
	}

	page := c.handle.Page

	c.applyRequestHeaders(req)
	c.applyCookies(req)

	router := setupHijack(page, c.cfg.BlockedResourceTypes, c.cfg.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	navCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	p := page.Context(navCtx)

	navStart := time.Now()
	if err := p.Navigate(req.URL); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("browser: navigation timeout, retrying with doubled timeout", "url", req.URL)
			_, _ = page.Eval(`() => window.stop()`)

			retryCtx, retryCancel := context.WithTimeout(parent, timeout*2)
			defer retryCancel()
			p = page.Context(retryCtx)
			if err := p.Navigate(req.URL); err != nil {
				return nil, categorizeError(err, "navigation to target URL failed after retry")
			}
		} else {
			return nil, categorizeError(err, "navigation to target URL failed")
		}
	}

	waitDOMReady(p)
	metrics.PageLoadDurationSeconds.Observe(time.Since(navStart).Seconds())

	if det := botguard.Detect(page); det.Detected {
		slog.Info("browser: bot-protection detected", "family", det.Family, "score", det.Score, "url", req.URL)
		if !botguard.Await(navCtx, page, timeout) {
			return nil, models.NewScrapeError(
				models.ErrCodeBotProtection,
				"bot-protection challenge was not bypassed within the timeout",
				nil,
			)
		}
	}

	if req.WaitForSelector != "" {
		if err := p.WaitElementsMoreThan(req.WaitForSelector, 0); err != nil {
			slog.Debug("browser: wait_for_selector did not appear", "selector", req.WaitForSelector, "error", err)
		}
	}

	statusCode := captureStatusCode(p)

	if req.RemoveOverlays {
		removeOverlays(p)
	}

	if len(req.Actions) > 0 {
		if err := executeActions(navCtx, page, req.Actions); err != nil {
			return nil, err
		}
	}

	links := extractLinks(p)

	var screenshot string
	if req.IncludeScreenshot {
		screenshot = captureScreenshot(p)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	return &NavigationResult{
		RawHTML:    rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: statusCode,
		FinalURL:   finalURLOr(p, req.URL),
		Links:      links,
		Screenshot: screenshot,
	}, nil
}

// PageSource retrieves the current HTML, making up to 3 attempts in all with
// a short back-off after each failure, whatever the error, per spec §4.5.
func (c *Context) PageSource() (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		html, err := c.handle.Page.HTML()
		if err == nil {
			return html, nil
		}
		lastErr = err
		time.Sleep(time.Duration(100*(attempt+1)) * time.Millisecond)
	}
	return "", lastErr
}

// Screenshot captures a base64 PNG, returning "" (never an error) on
// failure, since screenshots are always optional per spec §4.5.
func (c *Context) Screenshot() string {
	return captureScreenshot(c.handle.Page)
}

// Cleanup clears cookies/storage and returns to about:blank. Errors are
// logged, never raised, per spec §4.5.
func (c *Context) Cleanup() {
	cleanupHandle(c.handle)
}

func (c *Context) applyRequestHeaders(req *models.ScrapeRequest) {
	headers := make(map[string]string, len(req.Headers)+1)
	if _, hasReferer := req.Headers["Referer"]; !hasReferer {
		if u, err := url.Parse(req.URL); err == nil {
			headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	if req.UserAgent != "" {
		_ = c.handle.Page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: req.UserAgent})
	}
	if len(headers) == 0 {
		return
	}
	_, _ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(c.handle.Page)
}

func (c *Context) applyCookies(req *models.ScrapeRequest) {
	for _, cookie := range req.Cookies {
		domain := cookie.Domain
		if domain == "" {
			if u, err := url.Parse(req.URL); err == nil {
				domain = u.Host
			}
		}
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   path,
		}.Call(c.handle.Page)
	}
}

// waitDOMReady polls document.readyState until it is interactive or
// complete, then applies a small settling delay, per spec §4.5.
func waitDOMReady(p *rod.Page) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := evalStringOrEmpty(p, `() => document.readyState`)
		if state == "interactive" || state == "complete" {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("browser: WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
	time.Sleep(200 * time.Millisecond)
}

// captureStatusCode reads the navigation response's HTTP status via the
// Performance API (no CDP event listeners needed, which would otherwise
// conflict with the Fetch-domain hijack router).
func captureStatusCode(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// extractLinks returns every <a href> on the page via one injected JS call,
// per spec §4.7 step 3.
func extractLinks(p *rod.Page) []LinkInfo {
	res, err := p.Eval(`() => Array.from(document.querySelectorAll('a[href]')).map(a => ({
		href: a.href, text: (a.textContent || '').trim(), rel: a.rel || ''
	}))`)
	if err != nil {
		return nil
	}
	arr := res.Value.Arr()
	links := make([]LinkInfo, 0, len(arr))
	for _, v := range arr {
		links = append(links, LinkInfo{
			Href: v.Get("href").Str(),
			Text: v.Get("text").Str(),
			Rel:  v.Get("rel").Str(),
		})
	}
	return links
}

// captureScreenshot returns a base64 PNG, or "" on any failure (non-fatal
// per spec §4.5).
func captureScreenshot(p *rod.Page) string {
	data, err := p.Screenshot(false, nil)
	if err != nil {
		slog.Debug("browser: screenshot failed", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func finalURLOr(p *rod.Page, fallback string) string {
	if u := evalStringOrEmpty(p, `() => window.location.href`); u != "" {
		return u
	}
	return fallback
}

func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// removeOverlays strips fixed/sticky high-z-index elements and common
// cookie-consent/popup class patterns, moved from scraper/page.go.
func removeOverlays(p *rod.Page) {
	const js = `() => {
		const els = document.querySelectorAll('*');
		for (const el of els) {
			const style = window.getComputedStyle(el);
			const pos = style.position;
			if (pos === 'fixed' || pos === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900 || style.zIndex === 'auto') {
					el.remove();
				}
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
			'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
			'[class*="popup"]', '[id*="popup"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
					el.remove();
				}
			});
		}
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`
	_, _ = p.Eval(js)
}

func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
