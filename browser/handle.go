package browser

import (
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod"
)

// Handle wraps one pooled *rod.Page with the health-tracking metadata spec
// §4.6 uses to decide reuse-vs-retire. Adapted from the teacher's
// engine.PageHandle (errScore/useCount/age-based retirement), generalized
// from a bare int64 ID to the actual rod.Page it owns.
type Handle struct {
	ID      int64
	Page    *rod.Page
	created time.Time

	mu       sync.Mutex
	errScore float64
	useCount int
}

func newHandle(id int64, page *rod.Page) *Handle {
	return &Handle{ID: id, Page: page, created: time.Now()}
}

// RecordSuccess lowers the error score after a clean scrape.
func (h *Handle) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore = math.Max(0, h.errScore-0.5)
}

// RecordFailure raises the error score after a failed scrape.
func (h *Handle) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore += 1.0
}

// ShouldRetire reports whether this handle has accumulated enough errors,
// uses, or age that it should be destroyed rather than returned to the
// pool's available list, per spec §4.6's health-check rule.
func (h *Handle) ShouldRetire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.errScore >= 3.0 {
		return true
	}
	if h.useCount >= 50 {
		return true
	}
	return time.Since(h.created) >= 50*time.Minute
}

// healthy performs spec §4.6's cheap liveness check: read a property of the
// page (current URL) and, best-effort, compare the JS heap size to a ~1GB
// threshold. Any failure to read these means the underlying target is gone
// or wedged, so it reports unhealthy.
func (h *Handle) healthy() bool {
	if h.Page == nil {
		return false
	}
	if _, err := h.Page.Info(); err != nil {
		return false
	}

	res, err := h.Page.Eval(`() => (performance.memory && performance.memory.usedJSHeapSize) || 0`)
	if err != nil {
		// Non-Chromium targets (or a sandboxed page) may not expose
		// performance.memory; that alone isn't evidence of unhealthiness.
		return true
	}
	const heapThresholdBytes = 1 << 30 // ~1GB
	return res.Value.Int() < heapThresholdBytes
}

func (h *Handle) close() {
	if h.Page != nil {
		_ = h.Page.Close()
	}
}
