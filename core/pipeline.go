package core

import (
	"fmt"
	"strings"
)

// DefaultTitle names documents that have no heading.
const DefaultTitle = "Markdown Document"

// ImportHTML runs raw HTML through the extract and normalize stages and
// returns the resulting Markdown.
func ImportHTML(html string, extractor Extractor, normalizer Normalizer) (string, error) {
	// 1. Extract main content
	content, err := extractor.Extract(html)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}

	// 2. Normalize to Markdown
	markdown, err := normalizer.Normalize(content)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}
	return markdown, nil
}

// Title returns the text of the first top-most heading in doc, or
// DefaultTitle.
func Title(doc *Document) string {
	if doc == nil {
		return DefaultTitle
	}
	best, bestLevel := "", 7
	Walk(doc, func(n Node) bool {
		if h, ok := n.(*Heading); ok && h.Level < bestLevel {
			if text := strings.TrimSpace(PlainText(h)); text != "" {
				best, bestLevel = text, h.Level
			}
			return false
		}
		return true
	})
	if best == "" {
		return DefaultTitle
	}
	return best
}
