package scraper

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// newMarkdownConverter strips scripts, styles and other non-content nodes
// and renders the rest as CommonMark, the same shape the reader service
// returns. The converter is safe for concurrent use.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
}

// toMarkdown converts a rendered page, resolving relative links against domain.
func toMarkdown(conv *converter.Converter, html, domain string) (string, error) {
	return conv.ConvertString(html, converter.WithDomain(domain))
}
