// Package metrics exposes the Prometheus counters and histograms named in
// spec §6: request/error counts, navigation timing, pool state, and
// bot-protection outcomes. Not grounded on any pack repo (none exercise
// prometheus/client_golang with real usage) — a standard, widely-used
// ecosystem choice for Go service metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScrapeRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_requests_total",
		Help: "Total number of scrape requests received.",
	})

	ScrapeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_errors_total",
		Help: "Total number of scrape requests that failed, by error code.",
	}, []string{"code"})

	ScrapeDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scraper_duration_seconds",
		Help:    "End-to-end scrape duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	PageLoadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "page_load_duration_seconds",
		Help:    "Navigation-to-DOM-ready duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	BrowserPoolSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "browser_pool_size",
		Help: "Current browser pool counts by state (available, active, max).",
	}, []string{"state"})

	BrowserCreationTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "browser_creation_total",
		Help: "Total number of browser pages created by the pool.",
	})

	BrowserReuseTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "browser_reuse_total",
		Help: "Total number of browser pages reused from the pool.",
	})

	BrowserFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "browser_failures_total",
		Help: "Total number of browser pages found unhealthy at acquire or that failed to be created.",
	})

	CloudflareChallengesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudflare_challenges_total",
		Help: "Total number of bot-protection challenges detected, by family.",
	}, []string{"family"})

	CloudflareBypassSuccessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudflare_bypass_success_total",
		Help: "Total number of bot-protection challenges successfully bypassed, by family.",
	}, []string{"family"})

	CloudflareBypassFailureTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudflare_bypass_failure_total",
		Help: "Total number of bot-protection challenges not bypassed within the timeout, by family.",
	}, []string{"family"})
)
