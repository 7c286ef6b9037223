package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/purify-crawl/purify/browser"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/models"
)

// Scrape returns a handler for POST /api/v1/scrape. The heavy lifting
// (cache, pool, navigation, C2/C3) all lives in browser.Scraper; this
// handler only parses the request and maps the result to an HTTP status.
func Scrape(sc *browser.Scraper, cfg config.ScraperConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Data: models.ScrapeData{
					Metadata: models.Metadata{
						Error:      err.Error(),
						StatusCode: http.StatusBadRequest,
					},
				},
			})
			return
		}
		req.Defaults(int(cfg.DefaultTimeout.Milliseconds()))

		resp := sc.Scrape(c.Request.Context(), &req)
		c.JSON(statusFor(resp), resp)
	}
}

// statusFor maps a ScrapeResponse to an HTTP status: 200 on success, or a
// mapped status derived from the failure's error code (spec §6).
func statusFor(resp *models.ScrapeResponse) int {
	if resp.Success {
		return http.StatusOK
	}
	return mapErrorMessageToStatus(resp.Data.Metadata.Error)
}

// mapErrorMessageToStatus does a best-effort code sniff on the formatted
// ScrapeError message (Code: Message: cause) since the API layer only gets
// the flattened string, not the structured error, once it crosses the
// Scraper boundary.
func mapErrorMessageToStatus(msg string) int {
	switch {
	case hasPrefix(msg, models.ErrCodeTimeout), hasPrefix(msg, models.ErrCodeBotProtection):
		return http.StatusGatewayTimeout
	case hasPrefix(msg, models.ErrCodeInvalidInput):
		return http.StatusBadRequest
	case hasPrefix(msg, models.ErrCodeRateLimited):
		return http.StatusTooManyRequests
	case hasPrefix(msg, models.ErrCodeUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
