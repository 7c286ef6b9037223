package cache

import (
	"testing"
	"time"

	"github.com/purify-crawl/purify/models"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	c := NewMemory(10)
	defer c.Close()

	resp := &models.ScrapeResponse{Success: true, Data: models.ScrapeData{Markdown: "# A"}}
	c.Put("scrape:abc", resp, time.Hour)

	got, ok := c.Get("scrape:abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Data.Markdown != "# A" {
		t.Errorf("expected markdown preserved, got %q", got.Data.Markdown)
	}
}

func TestMemoryGetMissWhenAbsent(t *testing.T) {
	c := NewMemory(10)
	defer c.Close()
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestMemoryGetMissWhenExpired(t *testing.T) {
	c := NewMemory(10)
	defer c.Close()
	c.Put("k", &models.ScrapeResponse{Success: true}, -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss for expired entry")
	}
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory(10)
	defer c.Close()
	c.Put("k", &models.ScrapeResponse{Success: true}, time.Hour)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestMemoryEvictsAtCapacity(t *testing.T) {
	c := NewMemory(2)
	defer c.Close()
	c.Put("a", &models.ScrapeResponse{Success: true}, time.Hour)
	c.Put("b", &models.ScrapeResponse{Success: true}, time.Hour)
	c.Put("c", &models.ScrapeResponse{Success: true}, time.Hour)

	c.mu.RLock()
	n := len(c.store)
	c.mu.RUnlock()
	if n > 2 {
		t.Errorf("expected at most 2 entries after eviction, got %d", n)
	}
}

func TestFingerprintStableForIdenticalSubset(t *testing.T) {
	opts := models.FingerprintOptions{OnlyMain: true}
	a := Fingerprint("https://x.test/a", opts)
	b := Fingerprint("https://x.test/a", opts)
	if a != b {
		t.Errorf("expected identical fingerprint, got %q != %q", a, b)
	}
}

func TestFingerprintIgnoresNonOutputOptions(t *testing.T) {
	// Timeout/headers/cache_ttl are not part of FingerprintOptions at all,
	// so two requests differing only in those fields produce identical
	// fingerprints by construction.
	opts := models.FingerprintOptions{OnlyMain: true, Mobile: false}
	a := Fingerprint("https://x.test/a", opts)
	b := Fingerprint("https://x.test/a", opts)
	if a != b {
		t.Errorf("expected fingerprint independent of non-output options")
	}
}

func TestFingerprintDiffersOnOutputAffectingOption(t *testing.T) {
	a := Fingerprint("https://x.test/a", models.FingerprintOptions{OnlyMain: true})
	b := Fingerprint("https://x.test/a", models.FingerprintOptions{OnlyMain: false})
	if a == b {
		t.Errorf("expected differing fingerprints for differing only_main")
	}
}
