package crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/models"
)

// fakeScraper returns a canned page of HTML (with a link to the next page)
// for every URL it's asked to scrape; each call links to a fresh URL, so the
// crawler's own limits decide when the crawl stops.
type fakeScraper struct {
	calls atomic.Int64
}

func (f *fakeScraper) Scrape(_ context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	n := f.calls.Add(1)
	nextURL := fmt.Sprintf("https://x.test/page-%d", n)
	return &models.ScrapeResponse{
		Success: true,
		Data: models.ScrapeData{
			Markdown: "# page",
			RawHTML:  `<a href="` + nextURL + `">next</a>`,
		},
	}
}

func testCrawlConfig() config.CrawlConfig {
	return config.CrawlConfig{
		MaxConcurrentFetches: 2,
		RespectRobotsTxt:     false,
		DefaultMaxDepth:      2,
		DefaultMaxPages:      5,
		UserAgent:            "PurifyBot/1.0",
	}
}

func TestCrawlStopsAtMaxPages(t *testing.T) {
	fs := &fakeScraper{}
	cr := New(fs, testCrawlConfig())

	req := models.CrawlRequest{URL: "https://x.test/", MaxDepth: 3, MaxPages: 3}
	resp := cr.Crawl(context.Background(), req)

	if resp.Status != "completed" {
		t.Fatalf("expected status completed, got %q", resp.Status)
	}
	if len(resp.Pages) > 3 {
		t.Errorf("expected at most 3 pages, got %d", len(resp.Pages))
	}
	if resp.Stats.TotalPages != len(resp.Pages) {
		t.Errorf("expected stats.TotalPages to match len(Pages)")
	}
}

func TestCrawlStopsAtMaxDepth(t *testing.T) {
	fs := &fakeScraper{}
	cr := New(fs, testCrawlConfig())

	// Depth 1: the seed page plus its directly-linked child, no further hops.
	req := models.CrawlRequest{URL: "https://x.test/", MaxDepth: 1, MaxPages: 50}
	resp := cr.Crawl(context.Background(), req)

	if len(resp.Pages) != 2 {
		t.Errorf("expected exactly 2 pages at max_depth=1 (seed + one child), got %d", len(resp.Pages))
	}
}

func TestCrawlMarksFailedPages(t *testing.T) {
	calls := 0
	s := scraperFunc(func(_ context.Context, _ *models.ScrapeRequest) *models.ScrapeResponse {
		calls++
		return &models.ScrapeResponse{Success: false, Data: models.ScrapeData{Metadata: models.Metadata{Error: "boom"}}}
	})
	cr := New(s, testCrawlConfig())

	req := models.CrawlRequest{URL: "https://x.test/", MaxDepth: 1, MaxPages: 5}
	resp := cr.Crawl(context.Background(), req)

	if resp.Stats.FailedCount != 1 {
		t.Errorf("expected 1 failed page, got %d", resp.Stats.FailedCount)
	}
	if resp.Status != "failed" {
		t.Errorf("expected status failed when every page fails, got %q", resp.Status)
	}
}

func TestCrawlCancelledByContext(t *testing.T) {
	fs := &fakeScraper{}
	cr := New(fs, testCrawlConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := models.CrawlRequest{URL: "https://x.test/", MaxDepth: 2, MaxPages: 10}
	resp := cr.Crawl(ctx, req)

	if resp.Status != "cancelled" {
		t.Errorf("expected status cancelled, got %q", resp.Status)
	}
}

// scraperFunc adapts a plain function to the scraper interface.
type scraperFunc func(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse

func (f scraperFunc) Scrape(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	return f(ctx, req)
}
