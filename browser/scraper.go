package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/purify-crawl/purify/cache"
	"github.com/purify-crawl/purify/cleaner"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/metrics"
	"github.com/purify-crawl/purify/models"
	"github.com/purify-crawl/purify/structdata"
)

// Scraper is the Scraper (C7): the top-level orchestrator wiring the Cache
// (C1), Browser Pool (C6)/Browser Context (C5), Content Extractor (C2),
// and Structured-Data Extractor (C3) into the single scrape(url, options)
// contract spec §4.7 defines.
type Scraper struct {
	pool    *Pool
	cache   cache.Store
	cleaner *cleaner.Cleaner

	cacheEnabled bool
	defaultTTL   time.Duration
	scraperCfg   config.ScraperConfig

	sem chan struct{}
}

// NewScraper wires a Scraper from its already-constructed dependencies.
// Concurrency is bounded to the pool's HardMax, per spec §4.7 ("a
// counting semaphore sized to the pool capacity").
func NewScraper(pool *Pool, store cache.Store, cacheCfg config.CacheConfig, scraperCfg config.ScraperConfig) *Scraper {
	capacity := pool.cfg.HardMax
	if capacity <= 0 {
		capacity = 1
	}
	return &Scraper{
		pool:         pool,
		cache:        store,
		cleaner:      cleaner.NewCleaner(),
		cacheEnabled: cacheCfg.Enabled,
		defaultTTL:   cacheCfg.DefaultTTL,
		scraperCfg:   scraperCfg,
		sem:          make(chan struct{}, capacity),
	}
}

// Scrape implements spec §4.7's 7-step contract. It never returns an error:
// failures surface as a ScrapeResponse with Success=false so API handlers
// can always marshal a 200-shaped body with an embedded status_code.
func (s *Scraper) Scrape(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	metrics.ScrapeRequestsTotal.Inc()
	start := time.Now()
	defer func() { metrics.ScrapeDurationSeconds.Observe(time.Since(start).Seconds()) }()

	fp := ""
	if s.cacheEnabled && !req.BypassCache {
		fp = cache.Fingerprint(req.URL, req.Fingerprint())
		if cached, ok := s.cache.Get(fp); ok {
			cached.Cached = true
			return cached
		}
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return failureResponse(req.URL, models.NewScrapeError(models.ErrCodeTimeout, "scrape queue wait canceled", ctx.Err()))
	}

	handle, err := s.pool.Acquire()
	if err != nil {
		return failureResponse(req.URL, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire a browser", err))
	}
	bctx := newContext(handle, s.scraperCfg)
	success := false
	defer func() {
		bctx.Cleanup()
		s.pool.Release(handle, success)
	}()

	nav, navErr := bctx.Navigate(ctx, req)
	if navErr != nil {
		return failureResponse(req.URL, navErr)
	}

	onlyMain := true
	if req.OnlyMain != nil {
		onlyMain = *req.OnlyMain
	}

	var (
		data     models.ScrapeData
		cleanErr error
		structd  structdata.StructuredData
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		data, cleanErr = s.cleaner.Clean(nav.RawHTML, req.URL, req.OutputFormat, req.ExtractMode, cleaner.CleanOptions{
			OnlyMain:      onlyMain,
			CSSSelector:   req.CSSSelector,
			CitationStyle: req.CitationStyle,
		})
	}()
	go func() {
		defer wg.Done()
		structd = structdata.Extract(nav.RawHTML)
	}()
	wg.Wait()

	if cleanErr != nil {
		return failureResponse(req.URL, cleanErr)
	}

	data.StructuredData = structd
	data.Links = dedupeLinks(nav.Links)
	data.Metadata.SourceURL = req.URL
	data.Metadata.StatusCode = nav.StatusCode
	if req.IncludeRawHTML {
		data.RawHTML = nav.RawHTML
	}
	if req.IncludeScreenshot {
		data.Screenshot = nav.Screenshot
	}

	resp := &models.ScrapeResponse{Success: true, Data: data}

	success = true

	if s.cacheEnabled && !req.BypassCache && fp != "" {
		ttl := s.defaultTTL
		if req.CacheTTLSeconds > 0 {
			ttl = time.Duration(req.CacheTTLSeconds) * time.Second
		}
		s.cache.Put(fp, resp, ttl)
	}

	return resp
}

// Shutdown releases the underlying browser pool.
func (s *Scraper) Shutdown() {
	s.pool.Shutdown()
}

// Stats reports the browser pool's current state for the health endpoint.
func (s *Scraper) Stats() models.PoolStats {
	return s.pool.Stats()
}

// failureResponse implements spec §4.7 step 7: success=false, a populated
// metadata block with error/status_code=500, and a warning echoing the
// failure. Never raised past the caller.
func failureResponse(sourceURL string, err error) *models.ScrapeResponse {
	msg := err.Error()
	slog.Warn("scraper: scrape failed", "url", sourceURL, "error", msg)

	code := models.ErrCodeInternal
	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		code = scrapeErr.Code
	}
	metrics.ScrapeErrorsTotal.WithLabelValues(code).Inc()
	return &models.ScrapeResponse{
		Success: false,
		Data: models.ScrapeData{
			Metadata: models.Metadata{
				SourceURL:  sourceURL,
				StatusCode: 500,
				Error:      msg,
			},
			Warning: fmt.Sprintf("scrape failed: %s", msg),
		},
	}
}

// dedupeLinks returns href-only deduplicated links, dropping empty hrefs and
// sorting the result lexically, per spec §4.7 step 5.
func dedupeLinks(links []LinkInfo) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l.Href == "" {
			continue
		}
		if _, ok := seen[l.Href]; ok {
			continue
		}
		seen[l.Href] = struct{}{}
		out = append(out, l.Href)
	}
	sort.Strings(out)
	return out
}
