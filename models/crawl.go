package models

import "time"

// CrawlRequest is the payload for POST /crawl, matching spec §3.
type CrawlRequest struct {
	// URL is the seed page to crawl. Required.
	URL string `json:"url" binding:"required,url"`

	// MaxDepth limits the crawl depth from the seed URL. Range 1-10.
	// Default: 3.
	MaxDepth int `json:"max_depth,omitempty" binding:"omitempty,min=1,max=10"`

	// MaxPages limits the total number of pages to crawl. Range 1-1000.
	// Default: 100.
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=1,max=1000"`

	// IncludePatterns is a list of regexes; when non-empty, a discovered
	// URL is only admitted if at least one pattern matches.
	IncludePatterns []string `json:"include_patterns,omitempty"`

	// ExcludePatterns is a list of regexes; a discovered URL matching any
	// of these is never admitted.
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`

	// RespectRobots toggles robots.txt compliance checks.
	RespectRobots bool `json:"respect_robots,omitempty"`

	// CrawlID, if empty, is generated server-side.
	CrawlID string `json:"crawl_id,omitempty"`

	// Options are the shared scrape settings applied to each crawled page.
	Options CrawlOptions `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *CrawlRequest) Defaults() {
	if r.MaxDepth == 0 {
		r.MaxDepth = 3
	}
	if r.MaxPages == 0 {
		r.MaxPages = 100
	}
}

// CrawlOptions are the scrape settings applied to each crawled page.
type CrawlOptions struct {
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=markdown html text"`
	OnlyMain     *bool  `json:"only_main,omitempty"`
}

// CrawledPage is one page successfully crawled.
type CrawledPage struct {
	URL            string    `json:"url"`
	Markdown       string    `json:"markdown"`
	StructuredData any       `json:"structured_data"`
	ScrapeID       string    `json:"scrape_id"`
	CrawledAt      time.Time `json:"crawled_at"`
	Depth          int       `json:"depth"`
	ParentURL      string    `json:"parent_url,omitempty"`
}

// CrawlStats summarizes the outcome of a crawl.
type CrawlStats struct {
	TotalPages   int        `json:"total_pages"`
	SuccessCount int        `json:"success_count"`
	FailedCount  int        `json:"failed_count"`
	SkippedCount int        `json:"skipped_count"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	DurationS    float64    `json:"duration_s,omitempty"`
}

// CrawlResponse is the full result of a completed (or in-progress) crawl.
type CrawlResponse struct {
	CrawlID string        `json:"crawl_id"`
	Status  string        `json:"status"` // in_progress | completed | failed | cancelled
	Pages   []CrawledPage `json:"pages"`
	Stats   CrawlStats    `json:"stats"`
	Error   string        `json:"error,omitempty"`
}

// FrontierEntry is one URL known to the frontier (C8).
type FrontierEntry struct {
	URL       string
	Depth     int
	ParentURL string
}
