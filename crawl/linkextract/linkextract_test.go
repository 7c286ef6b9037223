package linkextract

import (
	"reflect"
	"sort"
	"strings"
	"testing"
)

const sampleHTML = `
<html><body>
<a href="/about">About</a>
<a href="https://x.test/blog/post-1">Post 1</a>
<a href="https://other.test/page">Off-domain</a>
<a href="/about#section">Duplicate with fragment</a>
<a href="/search?q=foo">Has query</a>
<a href="mailto:hi@x.test">Not a page</a>
</body></html>`

func TestExtractRestrictsToBaseDomain(t *testing.T) {
	e := New("https://x.test/", nil, nil, false, "PurifyBot/1.0")
	got := e.Extract(sampleHTML, "https://x.test/")

	for _, link := range got {
		if !strings.Contains(link, "x.test") {
			t.Errorf("expected only x.test links, got %q", link)
		}
	}
}

func TestExtractStripsFragmentAndDedupes(t *testing.T) {
	e := New("https://x.test/", nil, nil, false, "PurifyBot/1.0")
	got := e.Extract(sampleHTML, "https://x.test/")

	count := 0
	for _, link := range got {
		if link == "https://x.test/about" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected /about and /about#section to dedupe to 1 entry, got %d", count)
	}
}

func TestExtractAppliesIncludePatterns(t *testing.T) {
	e := New("https://x.test/", []string{`^https://x\.test/blog/`}, nil, false, "PurifyBot/1.0")
	got := e.Extract(sampleHTML, "https://x.test/")

	sort.Strings(got)
	want := []string{"https://x.test/blog/post-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected only blog links, got %v", got)
	}
}

func TestExtractAppliesExcludePatterns(t *testing.T) {
	e := New("https://x.test/", nil, []string{`/search`}, false, "PurifyBot/1.0")
	got := e.Extract(sampleHTML, "https://x.test/")

	for _, link := range got {
		if strings.Contains(link, "/search") {
			t.Errorf("expected /search links to be excluded, found %q", link)
		}
	}
}
