package models

// ScrapeRequest is the payload for POST /scrape. Fields map onto spec's
// ScrapeOptions plus a handful of teacher-derived extras (Actions, Cookies,
// CDPURL, ExtractMode) that do not affect the cache fingerprint.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// OnlyMain restricts extraction to the page's main content region.
	// Default: true. Part of the cache fingerprint.
	OnlyMain *bool `json:"only_main,omitempty"`

	// WaitForSelector, if set, waits for the given CSS selector to appear
	// before capturing content. Part of the cache fingerprint.
	WaitForSelector string `json:"wait_for_selector,omitempty"`

	// Mobile is part of the cache fingerprint only; the scraper does not
	// read it, so the page renders with the same viewport and user agent
	// either way.
	Mobile bool `json:"mobile,omitempty"`

	// IncludeScreenshot captures a base64 PNG screenshot.
	// Part of the cache fingerprint.
	IncludeScreenshot bool `json:"include_screenshot,omitempty"`

	// IncludeRawHTML includes the unprocessed page HTML in the result.
	// Part of the cache fingerprint.
	IncludeRawHTML bool `json:"include_raw_html,omitempty"`

	// TimeoutMs is the maximum duration in milliseconds for the entire
	// scrape operation. Default: from config. Not part of the fingerprint.
	TimeoutMs int `json:"timeout_ms,omitempty" binding:"omitempty,min=1000"`

	// UserAgent overrides the randomly selected user agent.
	// Not part of the fingerprint.
	UserAgent string `json:"user_agent,omitempty"`

	// Headers are extra request headers. Not part of the fingerprint.
	Headers map[string]string `json:"headers,omitempty"`

	// BypassCache skips cache read and write for this request.
	BypassCache bool `json:"bypass_cache,omitempty"`

	// CacheTTLSeconds overrides the default cache TTL for this request's
	// cache entry (seconds). Zero means use the configured default.
	CacheTTLSeconds int `json:"cache_ttl_s,omitempty"`

	// WindowWidth / WindowHeight are accepted but not read; the viewport is
	// the one the browser pool sets when it creates the page.
	WindowWidth  int `json:"window_width,omitempty"`
	WindowHeight int `json:"window_height,omitempty"`

	// Stealth is accepted but not read; the scraper applies the same
	// stealth setup whatever its value.
	Stealth bool `json:"stealth,omitempty"`

	// ProxyURL is validated as a URL but not read; it does not change the
	// proxy a scrape goes through.
	ProxyURL string `json:"proxy_url,omitempty" binding:"omitempty,url"`

	// OutputFormat controls the response body format.
	// Allowed: "markdown" (default), "html", "text".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=markdown html text"`

	// ExtractMode controls the content extraction strategy.
	// "readability" (default), "raw", "pruning", "auto". Not part of the
	// fingerprint — it is a rendering choice, not an output selector in the
	// spec's sense, but a teacher-native knob kept for parity.
	ExtractMode string `json:"extract_mode,omitempty" binding:"omitempty,oneof=readability raw pruning auto"`

	// CSSSelector, if set, filters HTML before cleaning to the matched
	// elements' outer HTML.
	CSSSelector string `json:"css_selector,omitempty"`

	// CitationStyle rewrites inline Markdown links to numbered reference
	// citations. Only applies when OutputFormat is "markdown". Not part of
	// the fingerprint — a rendering choice, like ExtractMode.
	CitationStyle bool `json:"citation_style,omitempty"`

	// RemoveOverlays strips cookie banners and popups before capture.
	RemoveOverlays bool `json:"remove_overlays,omitempty"`

	// Actions is an ordered list of browser interactions to perform after
	// navigation and before capture (click, scroll, wait, execute_js).
	Actions []Action `json:"actions,omitempty"`

	// Cookies are injected before navigation.
	Cookies []Cookie `json:"cookies,omitempty"`

	// CDPURL is accepted but not read; every scrape runs on the managed
	// browser pool.
	CDPURL string `json:"cdp_url,omitempty"`
}

// Action describes one browser-side interaction step.
type Action struct {
	Type         string `json:"type"` // wait | click | scroll | execute_js
	Selector     string `json:"selector,omitempty"`
	Milliseconds int    `json:"milliseconds,omitempty"`
	Direction    string `json:"direction,omitempty"` // up | down
	Amount       int    `json:"amount,omitempty"`
	Code         string `json:"code,omitempty"`
}

// Cookie is a single cookie to inject before navigation.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults(defaultTimeoutMs int) {
	if r.OnlyMain == nil {
		t := true
		r.OnlyMain = &t
	}
	if r.TimeoutMs == 0 {
		r.TimeoutMs = defaultTimeoutMs
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "markdown"
	}
	if r.ExtractMode == "" {
		r.ExtractMode = "readability"
	}
}

// FingerprintOptions is the output-affecting option subset spec §4.1 defines
// as the cache fingerprint's input. Every other ScrapeRequest field must
// never influence the fingerprint.
type FingerprintOptions struct {
	OnlyMain          bool
	WaitForSelector   string
	Mobile            bool
	IncludeScreenshot bool
	IncludeRawHTML    bool
}

// Fingerprint extracts the subset of this request that determines cache
// identity.
func (r *ScrapeRequest) Fingerprint() FingerprintOptions {
	onlyMain := true
	if r.OnlyMain != nil {
		onlyMain = *r.OnlyMain
	}
	return FingerprintOptions{
		OnlyMain:          onlyMain,
		WaitForSelector:   r.WaitForSelector,
		Mobile:            r.Mobile,
		IncludeScreenshot: r.IncludeScreenshot,
		IncludeRawHTML:    r.IncludeRawHTML,
	}
}
