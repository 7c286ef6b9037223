// Package browser implements the Browser Context (C5) and Browser Pool
// (C6): a pooled, stealth-configured headless-browser session manager.
// Adapted from the teacher's engine/adaptive_pool.go (health-scored page
// handles, memory-pressure-driven scaling) and scraper/scraper.go,
// scraper/page.go, scraper/hijack.go, scraper/actions.go (launch flags,
// navigation pipeline, resource blocking, action execution).
package browser

import (
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/purify-crawl/purify/config"
	"github.com/purify-crawl/purify/metrics"
	"github.com/purify-crawl/purify/models"
	"github.com/ysmood/gson"
)

// ErrPoolExhausted is returned by Acquire when available is empty and
// active is already at the current ceiling, per spec §4.6 step 4.
var ErrPoolExhausted = errors.New("browser: pool exhausted")

// PoolConfig controls pool sizing and scaling.
type PoolConfig struct {
	MinPages     int
	HardMax      int
	MemThreshold float64
	ScaleStep    float64
	WindowWidth  int
	WindowHeight int
}

func poolConfigFrom(browserCfg config.BrowserConfig, ap config.AdaptivePoolConfig) PoolConfig {
	minPages := ap.MinPages
	hardMax := ap.HardMax
	if hardMax < minPages {
		hardMax = minPages
	}
	if hardMax < browserCfg.MaxPages {
		hardMax = browserCfg.MaxPages
	}
	return PoolConfig{
		MinPages:     minPages,
		HardMax:      hardMax,
		MemThreshold: ap.MemThreshold,
		ScaleStep:    ap.ScaleStep,
		WindowWidth:  1366,
		WindowHeight: 768,
	}
}

// Pool is the Browser Pool (C6): available/active page handles under a
// mutex, with counters and memory-pressure-driven scaling of the ceiling
// between MinPages and HardMax (adapted from the teacher's AdaptivePool
// scalingLoop — spec §4.6 names a fixed max, which this pool treats as a
// dynamic ceiling bounded by HardMax rather than a hard constant).
type Pool struct {
	browser *rod.Browser
	cfg     PoolConfig

	mu        sync.Mutex
	available []*Handle
	active    map[*Handle]struct{}
	max       int

	nextID  atomic.Int64
	created atomic.Int64
	reused  atomic.Int64
	failed  atomic.Int64

	stopped chan struct{}
}

// NewPool launches a browser and pre-warms MinPages handles.
func NewPool(browserCfg config.BrowserConfig, adaptiveCfg config.AdaptivePoolConfig) (*Pool, error) {
	cfg := poolConfigFrom(browserCfg, adaptiveCfg)

	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)
	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// Stealth launch flags, grounded on scraper/scraper.go's NewScraper().
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	p := &Pool{
		browser: b,
		cfg:     cfg,
		active:  make(map[*Handle]struct{}),
		max:     cfg.MinPages,
		stopped: make(chan struct{}),
	}
	if p.max < 1 {
		p.max = 1
	}

	for i := 0; i < cfg.MinPages; i++ {
		h, err := p.createHandle()
		if err != nil {
			slog.Warn("browser pool: failed to pre-warm page", "error", err)
			continue
		}
		p.available = append(p.available, h)
	}

	go p.scalingLoop()
	p.reportGauges()
	return p, nil
}

// reportGauges publishes the pool's current available/active/max counts to
// the browser_pool_size gauge, per spec §6.
func (p *Pool) reportGauges() {
	p.mu.Lock()
	available, active, max := len(p.available), len(p.active), p.max
	p.mu.Unlock()

	metrics.BrowserPoolSize.WithLabelValues("available").Set(float64(available))
	metrics.BrowserPoolSize.WithLabelValues("active").Set(float64(active))
	metrics.BrowserPoolSize.WithLabelValues("max").Set(float64(max))
}

// Acquire implements spec §4.6's acquire() state machine.
func (p *Pool) Acquire() (*Handle, error) {
	for {
		p.mu.Lock()
		if n := len(p.available); n > 0 {
			h := p.available[n-1]
			p.available = p.available[:n-1]
			p.mu.Unlock()

			if !h.healthy() {
				h.close()
				p.failed.Add(1)
				metrics.BrowserFailuresTotal.Inc()
				continue
			}
			p.mu.Lock()
			p.active[h] = struct{}{}
			p.mu.Unlock()
			p.reused.Add(1)
			metrics.BrowserReuseTotal.Inc()
			p.reportGauges()
			return h, nil
		}

		if len(p.active) < p.max {
			p.mu.Unlock()
			h, err := p.createHandle()
			if err != nil {
				p.failed.Add(1)
				metrics.BrowserFailuresTotal.Inc()
				return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create browser page", err)
			}
			p.mu.Lock()
			p.active[h] = struct{}{}
			p.mu.Unlock()
			p.created.Add(1)
			metrics.BrowserCreationTotal.Inc()
			p.reportGauges()
			return h, nil
		}

		p.mu.Unlock()
		return nil, ErrPoolExhausted
	}
}

// Release implements spec §4.6's release(context): cleanup, then either
// return the handle to available or quit it.
func (p *Pool) Release(h *Handle, success bool) {
	if success {
		h.RecordSuccess()
	} else {
		h.RecordFailure()
	}
	cleanupHandle(h)

	p.mu.Lock()
	delete(p.active, h)
	keep := !h.ShouldRetire() && len(p.available) < p.max
	if keep {
		p.available = append(p.available, h)
	}
	p.mu.Unlock()

	if !keep {
		h.close()
	}
	p.reportGauges()
}

// Shutdown quits every handle in both sets, best-effort.
func (p *Pool) Shutdown() {
	close(p.stopped)

	p.mu.Lock()
	for _, h := range p.available {
		h.close()
	}
	for h := range p.active {
		h.close()
	}
	p.available = nil
	p.active = make(map[*Handle]struct{})
	p.mu.Unlock()

	if err := p.browser.Close(); err != nil {
		slog.Warn("browser pool: failed to close browser", "error", err)
	}
}

// Stats reports a snapshot of pool counters for the /health endpoint.
func (p *Pool) Stats() models.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.PoolStats{
		MaxBrowsers:    p.max,
		AvailableCount: len(p.available),
		ActiveCount:    len(p.active),
		Created:        int(p.created.Load()),
		Reused:         int(p.reused.Load()),
		Failed:         int(p.failed.Load()),
	}
}

func (p *Pool) createHandle() (*Handle, error) {
	page, err := p.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	if err := applySessionStealth(page, p.cfg.WindowWidth, p.cfg.WindowHeight); err != nil {
		slog.Warn("browser pool: stealth setup failed, proceeding anyway", "error", err)
	}
	return newHandle(p.nextID.Add(1), page), nil
}

// cleanupHandle implements spec §4.5's cleanup(): clear cookies, storage,
// navigate to about:blank. Errors logged, never raised.
func cleanupHandle(h *Handle) {
	if h.Page == nil {
		return
	}
	if _, err := (proto.NetworkClearBrowserCookies{}).Call(h.Page); err != nil {
		slog.Debug("browser: failed to clear cookies", "error", err)
	}
	if _, err := h.Page.Eval(`() => { try { localStorage.clear(); sessionStorage.clear(); } catch(e) {} }`); err != nil {
		slog.Debug("browser: failed to clear storage", "error", err)
	}
	if err := h.Page.Navigate("about:blank"); err != nil {
		slog.Debug("browser: failed to reset page to about:blank", "error", err)
	}
}

// applySessionStealth applies spec §4.5's per-session setup: window size,
// stealth script, random user agent + derived platform, realistic headers.
func applySessionStealth(page *rod.Page, width, height int) error {
	if width <= 0 {
		width = 1366
	}
	if height <= 0 {
		height = 768
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: width, Height: height, DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return err
	}
	if _, err := page.EvalOnNewDocument(stealthExtraJS); err != nil {
		slog.Debug("browser: extended stealth script failed", "error", err)
	}

	ua, platform := pickUserAgent()
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: ua,
		Platform:  platform,
	}); err != nil {
		return err
	}

	headers := toHeadersMap(realisticHeaders())
	_, _ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)

	return nil
}

func (p *Pool) scalingLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopped:
			return
		case <-ticker.C:
			p.scaleCheck()
		}
	}
}

func (p *Pool) scaleCheck() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	var memPressure float64
	if m.HeapSys > 0 {
		memPressure = float64(m.HeapInuse) / float64(m.HeapSys)
	}

	p.mu.Lock()
	active := len(p.active)
	currentMax := p.max
	p.mu.Unlock()

	if memPressure > p.cfg.MemThreshold {
		shrinkBy := int(math.Ceil(float64(currentMax) * p.cfg.ScaleStep))
		p.mu.Lock()
		newMax := p.max - shrinkBy
		if newMax < p.cfg.MinPages {
			newMax = p.cfg.MinPages
		}
		p.max = newMax
		for len(p.available) > 0 && len(p.available) > newMax-len(p.active) {
			h := p.available[len(p.available)-1]
			p.available = p.available[:len(p.available)-1]
			p.mu.Unlock()
			h.close()
			p.mu.Lock()
		}
		p.mu.Unlock()
		p.reportGauges()
		return
	}

	var activeRate float64
	if currentMax > 0 {
		activeRate = float64(active) / float64(currentMax)
	}
	if activeRate > 0.8 && currentMax < p.cfg.HardMax {
		growBy := int(math.Ceil(float64(currentMax) * p.cfg.ScaleStep))
		p.mu.Lock()
		newMax := p.max + growBy
		if newMax > p.cfg.HardMax {
			newMax = p.cfg.HardMax
		}
		p.max = newMax
		p.mu.Unlock()

		h, err := p.createHandle()
		if err != nil {
			slog.Warn("browser pool: failed to grow", "error", err)
			return
		}
		p.mu.Lock()
		p.available = append(p.available, h)
		p.mu.Unlock()
		metrics.BrowserCreationTotal.Inc()
		p.reportGauges()
	}
}

func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
