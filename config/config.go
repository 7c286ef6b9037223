package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Browser      BrowserConfig
	Scraper      ScraperConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	Log          LogConfig
	AdaptivePool AdaptivePoolConfig
	Crawl        CrawlConfig
}

// CrawlConfig controls the Crawler (C10) and its Frontier/Link Extractor.
type CrawlConfig struct {
	// MaxConcurrentFetches bounds how many pages the crawler drains from
	// the frontier at once (independent of the browser pool's own cap).
	MaxConcurrentFetches int // default: 5

	// RespectRobotsTxt is loaded from CRAWL_RESPECT_ROBOTS_TXT but not read;
	// robots.txt compliance follows each request's respect_robots field.
	RespectRobotsTxt bool // default: true

	// DefaultMaxDepth is loaded from CRAWL_DEFAULT_MAX_DEPTH but not read; a
	// request that omits max_depth gets 3 from CrawlRequest.Defaults.
	DefaultMaxDepth int // default: 2

	// DefaultMaxPages is loaded from CRAWL_DEFAULT_MAX_PAGES but not read; a
	// request that omits max_pages gets 100 from CrawlRequest.Defaults.
	DefaultMaxPages int // default: 50

	// UserAgent identifies the crawler to robots.txt and servers.
	UserAgent string // default: "PurifyBot/1.0"
}

// AdaptivePoolConfig controls the adaptive page pool sizing.
type AdaptivePoolConfig struct {
	// MinPages is the minimum number of pages kept in the pool.
	MinPages int // default: 3

	// HardMax is the absolute maximum number of pages.
	HardMax int // default: 20

	// MemThreshold is the heap memory fraction (0.0-1.0) above which the pool shrinks.
	MemThreshold float64 // default: 0.9

	// ScaleStep is the fraction of pool size to grow or shrink per interval.
	ScaleStep float64 // default: 0.05
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// Enabled toggles the Cache (C1) entirely; a disabled cache always misses.
	Enabled bool // default: true

	// MaxEntries is the maximum number of cached responses (Memory backend only).
	MaxEntries int // default: 1000

	// DefaultTTL is used when a request doesn't override cache_ttl_s.
	DefaultTTL time.Duration // default: 1h

	// RedisURL, if set, selects the Redis backend over the in-memory one.
	RedisURL string
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 10

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout is loaded from PURIFY_NAV_TIMEOUT but not read;
	// Navigate's timeout is the request's timeout_ms, capped at MaxTimeout.
	NavigationTimeout time.Duration // default: 15s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds additionally drops requests to known ad/tracker domains,
	// independent of resource type.
	BlockAds bool // default: false

	// ConcurrentScrapes is loaded from CONCURRENT_SCRAPES but not read; the
	// Scraper bounds concurrent scrapes to the browser pool's HardMax.
	ConcurrentScrapes int // default: 10

	// MaxRetries is loaded from MAX_RETRIES but not read; Navigate retries a
	// timed-out navigation exactly once, with double the timeout.
	MaxRetries int // default: 2

	// DefaultUserAgent is used when a request and the stealth rotation
	// both leave the user agent unset.
	DefaultUserAgent string

	// ScreenshotQuality is loaded from SCREENSHOT_QUALITY but not read;
	// screenshots are captured as PNG.
	ScreenshotQuality int // default: 80
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys (for MVP; replace with DB later).
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PURIFY_HOST", "0.0.0.0"),
			Port: envIntOr("PURIFY_PORT", 8080),
			Mode: envOr("PURIFY_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("PURIFY_HEADLESS", true),
			MaxPages:     envIntOr("PURIFY_MAX_PAGES", 10),
			DefaultProxy: os.Getenv("PURIFY_PROXY"),
			NoSandbox:    envBoolOr("PURIFY_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("PURIFY_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:    envDurationOr("PURIFY_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("PURIFY_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("PURIFY_NAV_TIMEOUT", 15*time.Second),
			BlockedResourceTypes: envSliceOr("PURIFY_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockAds:          envBoolOr("PURIFY_BLOCK_ADS", false),
			ConcurrentScrapes: envIntOr("CONCURRENT_SCRAPES", 10),
			MaxRetries:        envIntOr("MAX_RETRIES", 2),
			DefaultUserAgent:  os.Getenv("DEFAULT_USER_AGENT"),
			ScreenshotQuality: envIntOr("SCREENSHOT_QUALITY", 80),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PURIFY_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PURIFY_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PURIFY_RATE_RPS", 5.0),
			Burst:             envIntOr("PURIFY_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("CACHE_ENABLED", true),
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
			DefaultTTL: envDurationOr("CACHE_TTL", time.Hour),
			RedisURL:   os.Getenv("REDIS_URL"),
		},
		Log: LogConfig{
			Level:  envOr("PURIFY_LOG_LEVEL", "info"),
			Format: envOr("PURIFY_LOG_FORMAT", "json"),
		},
		AdaptivePool: AdaptivePoolConfig{
			MinPages:     envIntOr("PURIFY_MIN_PAGES", 3),
			HardMax:      envIntOr("PURIFY_HARD_MAX_PAGES", 20),
			MemThreshold: envFloatOr("PURIFY_MEM_THRESHOLD", 0.9),
			ScaleStep:    envFloatOr("PURIFY_SCALE_STEP", 0.05),
		},
		Crawl: CrawlConfig{
			MaxConcurrentFetches: envIntOr("CRAWL_CONCURRENCY", 5),
			RespectRobotsTxt:     envBoolOr("CRAWL_RESPECT_ROBOTS_TXT", true),
			DefaultMaxDepth:      envIntOr("CRAWL_DEFAULT_MAX_DEPTH", 2),
			DefaultMaxPages:      envIntOr("CRAWL_DEFAULT_MAX_PAGES", 50),
			UserAgent:            envOr("CRAWL_USER_AGENT", "PurifyBot/1.0"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
