package extractor

import (
	"log/slog"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minReadableLength is the minimum TextContent length (in characters) for
// readability output to count as a description. Below it the algorithm most
// likely latched onto a cookie banner or an empty shell.
const minReadableLength = 50

// ReadabilityStrategy runs the Mozilla Readability algorithm and offers the
// main article content as the description.
type ReadabilityStrategy struct{}

func (ReadabilityStrategy) Name() string { return "readability" }

func (ReadabilityStrategy) Extract(doc *Document, field Field) string {
	if field != FieldDescription {
		return ""
	}
	return doc.readableContent()
}

// readableContent runs readability at most once per document.
func (d *Document) readableContent() string {
	if d.readabilityDone {
		return d.readabilityHTML
	}
	d.readabilityDone = true

	article, err := readability.FromReader(strings.NewReader(d.HTML), d.URL)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", d.URL.String(), "error", err)
		return ""
	}
	if len(strings.TrimSpace(article.TextContent)) < minReadableLength {
		slog.Debug("readability: extracted content too short",
			"url", d.URL.String(), "length", len(article.TextContent))
		return ""
	}
	d.readabilityHTML = article.Content
	return d.readabilityHTML
}
