package parser

import (
	"bytes"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityStrategy extracts the main text with Mozilla's Readability
// heuristics. It is opt-in because it usually matches, which hides the
// paragraph fallback.
type ReadabilityStrategy struct{}

// Name implements Strategy.
func (ReadabilityStrategy) Name() string { return "readability" }

// Extract implements Strategy. Readability rewrites the tree it is given,
// so it works on its own parse of the raw page.
func (ReadabilityStrategy) Extract(doc *Document) (string, bool) {
	article, err := readability.FromReader(bytes.NewReader(doc.raw), doc.URL)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(article.TextContent)
	return text, text != ""
}
