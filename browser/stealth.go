package browser

import (
	"math/rand"
	"strings"
)

// userAgents is the fixed pool spec §4.5 draws from uniformly at random,
// grounded on original_source's USER_AGENTS list (Chrome/Firefox/Safari
// across Windows/macOS/Linux).
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// pickUserAgent returns a random user agent string and its derived platform,
// matching spec §4.5's "platform field derived from it" requirement.
func pickUserAgent() (ua, platform string) {
	ua = userAgents[rand.Intn(len(userAgents))]
	return ua, platformFromUserAgent(ua)
}

func platformFromUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Win32"
	case strings.Contains(ua, "Macintosh"):
		return "MacIntel"
	case strings.Contains(ua, "Linux"):
		return "Linux x86_64"
	default:
		return "Win32"
	}
}

// stealthExtraJS augments go-rod/stealth's baseline with the deltas spec
// §4.5 calls out that stealth.JS doesn't cover: canvas sub-pixel
// randomization and screen/timezone metric mocking. Grounded on
// original_source's ENHANCED_STEALTH_JS constant.
const stealthExtraJS = `(() => {
	// Perturb canvas fingerprinting with sub-pixel noise.
	const origToDataURL = HTMLCanvasElement.prototype.toDataURL;
	HTMLCanvasElement.prototype.toDataURL = function(...args) {
		const ctx = this.getContext('2d');
		if (ctx) {
			const shift = (Math.random() - 0.5) * 0.0001;
			const imageData = ctx.getImageData(0, 0, this.width, this.height);
			for (let i = 0; i < imageData.data.length; i += 4) {
				imageData.data[i] = imageData.data[i] + shift;
			}
			ctx.putImageData(imageData, 0, 0);
		}
		return origToDataURL.apply(this, args);
	};

	// Mock realistic screen metrics.
	Object.defineProperty(screen, 'availWidth', { get: () => screen.width });
	Object.defineProperty(screen, 'availHeight', { get: () => screen.height - 40 });

	// Mock timezone to a common one so Intl queries don't betray the host.
	try {
		const origResolvedOptions = Intl.DateTimeFormat.prototype.resolvedOptions;
		Intl.DateTimeFormat.prototype.resolvedOptions = function(...args) {
			const opts = origResolvedOptions.apply(this, args);
			opts.timeZone = 'America/New_York';
			return opts;
		};
	} catch (e) {}
})()`

// realisticHeaders returns the request headers spec §4.5 requires beyond
// whatever the caller supplies, grounded on original_source's
// Network.setExtraHTTPHeaders stealth-mode block.
func realisticHeaders() map[string]string {
	return map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"accept-language":           "en-US,en;q=0.9",
		"sec-ch-ua":                 `"Not_A Brand";v="8", "Chromium";v="120"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        `"Windows"`,
		"sec-fetch-dest":            "document",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-site":            "none",
		"sec-fetch-user":            "?1",
		"upgrade-insecure-requests": "1",
		"cache-control":             "max-age=0",
	}
}
