package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/purify-crawl/purify/api"
	"github.com/purify-crawl/purify/browser"
	"github.com/purify-crawl/purify/cache"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/crawl/crawler"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("purify starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Initialise the Browser Pool (C6), launches Chrome ────────
	pool, err := browser.NewPool(cfg.Browser, cfg.AdaptivePool)
	if err != nil {
		slog.Error("failed to initialise browser pool", "error", err)
		os.Exit(1)
	}

	// ── 4. Initialise the Cache (C1) ─────────────────────────────────
	store, err := newCacheStore(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialise cache", "error", err)
		os.Exit(1)
	}

	// ── 5. Wire the Scraper (C7) and Crawler (C10) ──────────────────
	sc := browser.NewScraper(pool, store, cfg.Cache, cfg.Scraper)
	cr := crawler.New(sc, cfg.Crawl)

	// ── 6. Setup router ───────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(sc, cr, cfg, startTime)

	// ── 7. Start HTTP server ───────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	sc.Shutdown()
	if err := store.Close(); err != nil {
		slog.Warn("cache shutdown error", "error", err)
	}

	slog.Info("purify stopped")
}

// newCacheStore picks the Redis backend when REDIS_URL is set, else the
// in-memory backend, per spec §6.
func newCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	if cfg.RedisURL != "" {
		slog.Info("cache: using redis backend", "url", cfg.RedisURL)
		return cache.NewRedis(cfg.RedisURL)
	}
	slog.Info("cache: using in-memory backend", "maxEntries", cfg.MaxEntries)
	return cache.NewMemory(cfg.MaxEntries), nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
