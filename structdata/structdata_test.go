package structdata

import "testing"

const sampleHTML = `
<html lang="en-US">
<head>
  <meta property="og:title" content="Example Title">
  <meta property="og:type" content="article">
  <meta name="twitter:card" content="summary">
  <meta name="description" content="An example page">
  <script type="application/ld+json">{"@context":"https://schema.org","@type":"Article"}</script>
  <script type="application/ld+json">not json</script>
</head>
<body></body>
</html>`

func TestExtractJSONLD(t *testing.T) {
	data := Extract(sampleHTML)
	if len(data.JSONLD) != 1 {
		t.Fatalf("expected 1 valid JSON-LD object (invalid one skipped), got %d", len(data.JSONLD))
	}
	if data.JSONLD[0]["@type"] != "Article" {
		t.Errorf("expected @type=Article, got %v", data.JSONLD[0]["@type"])
	}
}

func TestExtractOpenGraph(t *testing.T) {
	data := Extract(sampleHTML)
	if data.OpenGraph["title"] != "Example Title" {
		t.Errorf("expected og title stripped of prefix, got %q", data.OpenGraph["title"])
	}
}

func TestExtractTwitterCard(t *testing.T) {
	data := Extract(sampleHTML)
	if data.TwitterCard["card"] != "summary" {
		t.Errorf("expected twitter card stripped of prefix, got %q", data.TwitterCard["card"])
	}
}

func TestExtractMetaLanguage(t *testing.T) {
	data := Extract(sampleHTML)
	if data.Meta["language"] != "en" {
		t.Errorf("expected language 'en' from html[lang], got %q", data.Meta["language"])
	}
	if data.Meta["description"] != "An example page" {
		t.Errorf("expected description meta preserved, got %q", data.Meta["description"])
	}
}

func TestExtractMetaLanguageAbsentNeverNil(t *testing.T) {
	data := Extract(`<html><head></head><body></body></html>`)
	if data.Meta["language"] != "" {
		t.Errorf("expected empty string language, got %q", data.Meta["language"])
	}
}
