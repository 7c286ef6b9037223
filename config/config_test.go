package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scraper.DefaultTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Scraper.DefaultTimeout)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.RedisURL != "" {
		t.Errorf("expected no redis URL by default, got %q", cfg.Cache.RedisURL)
	}
	if cfg.Crawl.DefaultMaxDepth != 2 {
		t.Errorf("expected default crawl depth 2, got %d", cfg.Crawl.DefaultMaxDepth)
	}
	if cfg.Crawl.UserAgent != "PurifyBot/1.0" {
		t.Errorf("expected default crawl user agent, got %q", cfg.Crawl.UserAgent)
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("PURIFY_PORT", "9090")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CRAWL_DEFAULT_MAX_DEPTH", "4")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("expected overridden port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled via env override")
	}
	if cfg.Crawl.DefaultMaxDepth != 4 {
		t.Errorf("expected overridden crawl depth 4, got %d", cfg.Crawl.DefaultMaxDepth)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected overridden redis URL, got %q", cfg.Cache.RedisURL)
	}
}

func TestEnvSliceOrSplitsAndTrims(t *testing.T) {
	key := "PURIFY_TEST_SLICE"
	t.Setenv(key, "a, b ,c")
	got := envSliceOr(key, nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestEnvSliceOrFallsBackWhenUnset(t *testing.T) {
	os.Unsetenv("PURIFY_UNSET_SLICE")
	got := envSliceOr("PURIFY_UNSET_SLICE", []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("expected fallback [x], got %v", got)
	}
}

func TestEnvBoolOrIgnoresInvalidValue(t *testing.T) {
	key := "PURIFY_TEST_BOOL"
	t.Setenv(key, "not-a-bool")
	if got := envBoolOr(key, true); !got {
		t.Error("expected fallback true for invalid bool env value")
	}
}
