package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/models"
)

// These tests cover the pool/handle/stealth/error-classification logic that
// doesn't require a live Chrome instance. The teacher pack carries no
// rod-dependent unit tests either (see simhash_test.go for its style);
// Navigate/Screenshot/stealth-injection paths are exercised only through
// integration use, consistent with that practice.

func TestPoolConfigFromRaisesHardMaxToAtLeastMinPagesAndBrowserMax(t *testing.T) {
	cfg := poolConfigFrom(
		config.BrowserConfig{MaxPages: 15},
		config.AdaptivePoolConfig{MinPages: 3, HardMax: 5, MemThreshold: 0.9, ScaleStep: 0.05},
	)
	if cfg.HardMax != 15 {
		t.Errorf("expected HardMax raised to BrowserConfig.MaxPages (15), got %d", cfg.HardMax)
	}
	if cfg.MinPages != 3 {
		t.Errorf("expected MinPages carried through unchanged, got %d", cfg.MinPages)
	}
}

func TestPoolConfigFromKeepsHardMaxWhenAlreadyLargest(t *testing.T) {
	cfg := poolConfigFrom(
		config.BrowserConfig{MaxPages: 10},
		config.AdaptivePoolConfig{MinPages: 3, HardMax: 20, MemThreshold: 0.9, ScaleStep: 0.05},
	)
	if cfg.HardMax != 20 {
		t.Errorf("expected HardMax to stay at 20, got %d", cfg.HardMax)
	}
}

func TestHandleRecordSuccessLowersErrScore(t *testing.T) {
	h := newHandle(1, nil)
	h.RecordFailure()
	h.RecordFailure()
	h.RecordFailure()
	if !h.ShouldRetire() {
		t.Fatal("expected handle to be retirable after 3 failures")
	}
	h.RecordSuccess()
	if h.ShouldRetire() {
		t.Error("expected a success to lower errScore below the retirement threshold")
	}
}

func TestHandleShouldRetireAfterUseLimit(t *testing.T) {
	h := newHandle(1, nil)
	for i := 0; i < 50; i++ {
		h.RecordSuccess()
	}
	if !h.ShouldRetire() {
		t.Error("expected handle to retire once useCount reaches 50")
	}
}

func TestHandleHealthyReportsFalseForNilPage(t *testing.T) {
	h := newHandle(1, nil)
	if h.healthy() {
		t.Error("expected a handle with no page to report unhealthy")
	}
}

func TestPlatformFromUserAgent(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)":      "Win32",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)": "MacIntel",
		"Mozilla/5.0 (X11; Linux x86_64)":                "Linux x86_64",
		"some unrecognized agent string":                 "Win32",
	}
	for ua, want := range cases {
		if got := platformFromUserAgent(ua); got != want {
			t.Errorf("platformFromUserAgent(%q) = %q, want %q", ua, got, want)
		}
	}
}

func TestPickUserAgentReturnsMatchingPlatform(t *testing.T) {
	ua, platform := pickUserAgent()
	if ua == "" {
		t.Fatal("expected a non-empty user agent")
	}
	if platform != platformFromUserAgent(ua) {
		t.Error("expected platform to be derived from the picked user agent")
	}
}

func TestToHeadersMapPreservesAllKeys(t *testing.T) {
	headers := realisticHeaders()
	m := toHeadersMap(headers)
	if len(m) != len(headers) {
		t.Fatalf("expected %d headers, got %d", len(headers), len(m))
	}
	if m["accept-language"].Str() != headers["accept-language"] {
		t.Errorf("expected accept-language to round-trip, got %q", m["accept-language"].Str())
	}
}

func TestDedupeLinksSortsAndDropsEmpty(t *testing.T) {
	links := []LinkInfo{
		{Href: "https://x.test/b"},
		{Href: ""},
		{Href: "https://x.test/a"},
		{Href: "https://x.test/b"},
	}
	got := dedupeLinks(links)
	want := []string{"https://x.test/a", "https://x.test/b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategorizeErrorClassifiesDeadlineExceeded(t *testing.T) {
	scrapeErr := categorizeError(context.DeadlineExceeded, "timed out")
	if scrapeErr.Code != models.ErrCodeTimeout {
		t.Errorf("expected ErrCodeTimeout, got %q", scrapeErr.Code)
	}
}

func TestCategorizeErrorClassifiesCanceled(t *testing.T) {
	scrapeErr := categorizeError(context.Canceled, "timed out")
	if scrapeErr.Code != models.ErrCodeTimeout {
		t.Errorf("expected canceled navigation to map to ErrCodeTimeout, got %q", scrapeErr.Code)
	}
}

func TestCategorizeErrorDefaultsToNavigation(t *testing.T) {
	scrapeErr := categorizeError(errors.New("boom"), "nav failed")
	if scrapeErr.Code != models.ErrCodeNavigation {
		t.Errorf("expected ErrCodeNavigation, got %q", scrapeErr.Code)
	}
}

func TestFailureResponseSetsStatusCode500(t *testing.T) {
	resp := failureResponse("https://x.test/", models.NewScrapeError(models.ErrCodeTimeout, "timed out", context.DeadlineExceeded))
	if resp.Success {
		t.Error("expected Success=false")
	}
	if resp.Data.Metadata.StatusCode != 500 {
		t.Errorf("expected status_code 500, got %d", resp.Data.Metadata.StatusCode)
	}
	if resp.Data.Warning == "" {
		t.Error("expected a populated warning")
	}
}
