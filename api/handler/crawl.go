package handler

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/purify-crawl/purify/crawl/crawler"
	"github.com/purify-crawl/purify/models"
)

// crawlStore holds completed/in-progress crawl jobs keyed by crawl_id, for
// GET /crawl/:id lookups. Crawls themselves run synchronously to
// completion inside the background goroutine PostCrawl launches.
var crawlStore sync.Map

func init() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			crawlStore.Range(func(key, value any) bool {
				resp := value.(*models.CrawlResponse)
				if resp.Stats.EndTime != nil && resp.Stats.EndTime.Before(cutoff) {
					crawlStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostCrawl returns a handler for POST /api/v1/crawl. Accepts the request,
// assigns a crawl ID, launches the (synchronous, per spec §4.10) crawl in
// the background, and immediately returns 200 with status=in_progress so
// the caller can poll GET /crawl/:id.
func PostCrawl(cr *crawler.Crawler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Status: "failed",
				Error:  err.Error(),
			})
			return
		}
		req.Defaults()
		if req.CrawlID == "" {
			req.CrawlID = fmt.Sprintf("crawl-%d", rand.Int63())
		}

		crawlStore.Store(req.CrawlID, &models.CrawlResponse{CrawlID: req.CrawlID, Status: "in_progress"})

		// Detached from the request context: a crawl outlives the HTTP
		// handler that started it.
		go func() {
			resp := cr.Crawl(context.Background(), req)
			crawlStore.Store(resp.CrawlID, resp)
		}()

		c.JSON(http.StatusOK, gin.H{"crawl_id": req.CrawlID, "status": "in_progress"})
	}
}

// GetCrawl returns a handler for GET /api/v1/crawl/:id.
func GetCrawl() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		val, ok := crawlStore.Load(id)
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "crawl job not found",
			})
			return
		}
		c.JSON(http.StatusOK, val.(*models.CrawlResponse))
	}
}
