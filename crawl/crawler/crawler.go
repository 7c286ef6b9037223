// Package crawler implements the Crawler (C10): depth-bounded BFS crawl
// orchestration over the Frontier (C8), Link Extractor (C9), and Scraper
// (C7). Grounded on original_source's crawler_service.py's crawl_sync
// batch-drain loop, adapted to Go goroutines/WaitGroup in place of asyncio
// tasks.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/crawl/frontier"
	"github.com/purify-crawl/purify/crawl/linkextract"
	"github.com/purify-crawl/purify/models"
)

// scraper is the subset of browser.Scraper the Crawler depends on. Accepting
// this interface instead of the concrete type keeps the Crawler testable
// without a real browser pool.
type scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse
}

// Crawler is the Crawler (C10): a reference to the Scraper, a worker count,
// and the crawl config. Each Crawl call builds its own Frontier, Link
// Extractor, and a mutex protecting the accumulated response.
type Crawler struct {
	scraper scraper
	workers int
	cfg     config.CrawlConfig
}

// New builds a Crawler backed by scraper, bounded to cfg.MaxConcurrentFetches
// workers per batch.
func New(s scraper, cfg config.CrawlConfig) *Crawler {
	workers := cfg.MaxConcurrentFetches
	if workers <= 0 {
		workers = 5
	}
	return &Crawler{scraper: s, workers: workers, cfg: cfg}
}

// Crawl runs a synchronous BFS crawl per spec §4.10 and returns the
// completed (or cancelled) response. It never panics past this call:
// a fatal internal error is reported via status=failed.
func (cr *Crawler) Crawl(ctx context.Context, req models.CrawlRequest) *models.CrawlResponse {
	req.Defaults()

	resp := &models.CrawlResponse{
		CrawlID: req.CrawlID,
		Status:  "in_progress",
		Stats:   models.CrawlStats{StartTime: time.Now()},
	}
	if resp.CrawlID == "" {
		resp.CrawlID = fmt.Sprintf("crawl-%d", rand.Int63())
	}

	extractor := linkextract.New(req.URL, req.IncludePatterns, req.ExcludePatterns, req.RespectRobots, cr.cfg.UserAgent)
	fr := frontier.New(req.MaxDepth, req.MaxPages, extractor.CrawlDelay())

	fr.Enqueue(req.URL, 0, "")

	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			resp.Status = "cancelled"
			mu.Unlock()
			return finalize(resp)
		default:
		}

		mu.Lock()
		doneOnPages := len(resp.Pages) >= req.MaxPages
		mu.Unlock()
		if doneOnPages {
			break
		}
		if fr.IsDone() {
			break
		}

		mu.Lock()
		remaining := req.MaxPages - len(resp.Pages)
		mu.Unlock()
		batchSize := cr.workers
		if remaining < batchSize {
			batchSize = remaining
		}
		batch := fr.DrainUpTo(batchSize)

		if len(batch) == 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		var wg sync.WaitGroup
		for _, entry := range batch {
			wg.Add(1)
			go func(e frontier.Entry) {
				defer wg.Done()
				defer fr.Complete(e.URL)
				cr.processOne(ctx, e, req, fr, extractor, resp, &mu)
			}(entry)
		}
		wg.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	resp.Status = "completed"
	return finalize(resp)
}

// processOne scrapes one frontier entry, records the outcome under mu, and
// (on success, within depth) feeds the page's links back into the frontier.
func (cr *Crawler) processOne(ctx context.Context, e frontier.Entry, req models.CrawlRequest, fr *frontier.Frontier, extractor *linkextract.Extractor, resp *models.CrawlResponse, mu *sync.Mutex) {
	scrapeReq := &models.ScrapeRequest{
		URL:            e.URL,
		OnlyMain:       req.Options.OnlyMain,
		OutputFormat:   req.Options.OutputFormat,
		IncludeRawHTML: true, // the link extractor (C9) needs it; stripped before the page is stored
	}
	scrapeReq.Defaults(30000)

	fetchStart := time.Now()
	result := cr.scraper.Scrape(ctx, scrapeReq)
	fr.UpdateLastDelay(time.Since(fetchStart))

	mu.Lock()
	if !result.Success {
		resp.Stats.FailedCount++
		mu.Unlock()
		slog.Debug("crawler: page failed", "url", e.URL, "error", result.Data.Metadata.Error)
		return
	}
	resp.Pages = append(resp.Pages, models.CrawledPage{
		URL:            e.URL,
		Markdown:       result.Data.Markdown,
		StructuredData: result.Data.StructuredData,
		ScrapeID:       fmt.Sprintf("%s#%d", resp.CrawlID, len(resp.Pages)),
		CrawledAt:      time.Now(),
		Depth:          e.Depth,
		ParentURL:      e.ParentURL,
	})
	resp.Stats.SuccessCount++
	mu.Unlock()

	if e.Depth >= req.MaxDepth {
		return
	}

	links := extractor.Extract(result.Data.RawHTML, e.URL)
	for _, link := range links {
		fr.Enqueue(link, e.Depth+1, e.URL)
	}
}

func finalize(resp *models.CrawlResponse) *models.CrawlResponse {
	now := time.Now()
	resp.Stats.EndTime = &now
	resp.Stats.DurationS = now.Sub(resp.Stats.StartTime).Seconds()
	resp.Stats.TotalPages = len(resp.Pages)
	if resp.Stats.FailedCount > 0 && resp.Stats.SuccessCount == 0 {
		resp.Status = "failed"
	}
	return resp
}
