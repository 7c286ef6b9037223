package models

import "github.com/purify-crawl/purify/structdata"

// ScrapeResponse is the response for POST /scrape, matching spec §3's
// ScrapeResult shape: {success, data, cached}.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Cached indicates the result was served from the cache.
	Cached bool `json:"cached"`

	// Data carries the scrape payload. Populated on both success and
	// failure (on failure, Metadata.Error and Warning are set).
	Data ScrapeData `json:"data"`
}

// ScrapeData is the inner payload of a ScrapeResponse.
type ScrapeData struct {
	Markdown   string   `json:"markdown,omitempty"`
	HTML       string   `json:"html,omitempty"`
	RawHTML    string   `json:"raw_html,omitempty"`
	Screenshot string   `json:"screenshot,omitempty"` // base64 PNG
	Links      []string `json:"links"`

	Metadata       Metadata                `json:"metadata"`
	StructuredData structdata.StructuredData `json:"structured_data"`

	// Tokens provides token estimates before and after cleaning.
	Tokens TokenInfo `json:"tokens"`

	// Timing holds duration breakdowns for the operation; no code fills it
	// in, so its fields are always zero.
	Timing TimingInfo `json:"timing"`

	// Warning carries a short note on a failed scrape ("scrape failed:
	// <reason>"). Empty on success.
	Warning string `json:"warning,omitempty"`
}

// Metadata holds page-level information extracted during scraping.
type Metadata struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	SiteName      string `json:"site_name,omitempty"`
	Author        string `json:"author,omitempty"`
	Language      string `json:"language"`
	SourceURL     string `json:"source_url"`
	PublishedDate string `json:"published_date,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	CanonicalURL  string `json:"canonical_url,omitempty"`
	Favicon       string `json:"favicon,omitempty"`
	Viewport      string `json:"viewport,omitempty"`
	Charset       string `json:"charset,omitempty"`

	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
}

// TokenInfo provides before/after token estimates to show cleaning efficacy.
type TokenInfo struct {
	// OriginalEstimate is the estimated token count of the raw HTML.
	OriginalEstimate int `json:"original_estimate"`

	// CleanedEstimate is the estimated token count of the cleaned output.
	CleanedEstimate int `json:"cleaned_estimate"`

	// SavingsPercent is the percentage of tokens removed (0-100).
	SavingsPercent float64 `json:"savings_percent"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent navigating and rendering the page.
	NavigationMs int64 `json:"navigation_ms"`

	// CleaningMs is the time spent extracting content and converting to markdown.
	CleaningMs int64 `json:"cleaning_ms"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser pool (C6).
type PoolStats struct {
	MaxBrowsers    int `json:"max_browsers"`
	AvailableCount int `json:"available_count"`
	ActiveCount    int `json:"active_count"`
	Created        int `json:"created"`
	Reused         int `json:"reused"`
	Failed         int `json:"failed"`
}
