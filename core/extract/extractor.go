// Package extract implements the Extractor interface for HTML import.
// It isolates the meaningful content of pasted or loaded HTML by:
//  1. Finding the best content container (<main>, <article>, or <body>)
//  2. Removing elements that have no markdown equivalent (scripts, styles,
//     forms, embedded media, page chrome)
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// noiseSelector matches HTML elements removed before conversion.
// Images are kept: markdown has a syntax for them.
var noiseSelector = cascadia.MustCompile(strings.Join([]string{
	"script", "style", "noscript", "template",
	"nav", "footer",
	"iframe", "video", "audio", "object", "embed",
	"svg", "canvas",
	"form", "button", "input:not([type=checkbox])", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}, ", "))

// containerSelectors are tried in priority order.
var containerSelectors = []cascadia.Selector{
	cascadia.MustCompile("main"),
	cascadia.MustCompile("article"),
	cascadia.MustCompile("body"),
}

// HTMLExtractor strips noise from HTML and returns the content fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract takes raw HTML (a full page or a fragment) and returns a cleaned
// HTML fragment containing only the content worth converting.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	// Remove noise elements first (operates on the whole document).
	doc.FindMatcher(noiseSelector).Remove()

	// Find the best content container. The parser always synthesizes a
	// <body>, so fragments land there.
	var content *goquery.Selection
	for _, sel := range containerSelectors {
		found := doc.FindMatcher(sel)
		if found.Length() > 0 {
			content = found.First()
			break
		}
	}

	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	result, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	return strings.TrimSpace(result), nil
}
