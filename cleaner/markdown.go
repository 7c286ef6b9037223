package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// tablePaddingBehavior controls how much whitespace the table plugin adds
// per cell. Minimal padding (one space, columns left unaligned) trades a
// little readability in raw Markdown for noticeably fewer tokens on
// wide/data-heavy tables, which matters more for an LLM-facing pipeline
// than for a human reading the raw source.
const tablePaddingBehavior = table.CellPaddingBehaviorMinimal

// buildMarkdownConverter assembles a Converter from three plugins: base
// (strips script/style/iframe/noscript/head/meta/link/input/textarea and
// comments), commonmark (headings/lists/links/code/emphasis/blockquotes),
// and table (keeps tabular structure intact). The result is reused across
// requests — Converter is safe for concurrent use.
func buildMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(table.WithCellPaddingBehavior(tablePaddingBehavior)),
		),
	)
}

// renderMarkdown converts htmlContent to Markdown via conv, resolving
// relative <a>/<img> URLs against domain so the output is self-contained.
func renderMarkdown(conv *converter.Converter, htmlContent, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
