package cache

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/purify-crawl/purify/hashutil"
	"github.com/purify-crawl/purify/models"
)

// Fingerprint builds the stable cache key spec §4.1 mandates: a hash over
// the canonical URL and the sorted output-affecting option subset. Other
// options (timeouts, headers, cache_ttl) never influence it. Grounded on
// original_source's cache_service.py _generate_cache_key, which hashes the
// same five-field subset into a "scrape:<hex>" key.
func Fingerprint(rawURL string, opts models.FingerprintOptions) string {
	canonical := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		canonical = u.String()
	}

	fields := map[string]string{
		"url":                canonical,
		"only_main":          strconv.FormatBool(opts.OnlyMain),
		"wait_for_selector":  opts.WaitForSelector,
		"mobile":             strconv.FormatBool(opts.Mobile),
		"include_screenshot": strconv.FormatBool(opts.IncludeScreenshot),
		"include_raw_html":   strconv.FormatBool(opts.IncludeRawHTML),
	}

	// SHA256 is always a supported algorithm, so HashBytes cannot fail here.
	hash, _ := hashutil.HashBytes(hashutil.CanonicalEncode(fields), hashutil.SHA256)
	return fmt.Sprintf("scrape:%s", hash)
}
