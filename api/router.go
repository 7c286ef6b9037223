package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/purify-crawl/purify/api/handler"
	"github.com/purify-crawl/purify/api/middleware"
	"github.com/purify-crawl/purify/browser"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/crawl/crawler"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *browser.Scraper, cr *crawler.Crawler, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health and metrics — no auth required, per monitoring convention.
	v1.GET("/health", handler.Health(sc, startTime))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(sc, cfg.Scraper))
	protected.POST("/crawl", handler.PostCrawl(cr))
	protected.GET("/crawl/:id", handler.GetCrawl())

	return r
}
