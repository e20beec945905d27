// Package export serializes editor snapshots into downloadable formats:
// the markdown source itself, a standalone printable HTML document, a PDF,
// and a JSON dump of the node tree.
package export

import (
	"github.com/gaurav-prasanna/mdpreview/core"
)

// SourceExporter writes the document text as-is. Export must never alter
// the text, so the download round-trips byte for byte.
type SourceExporter struct{}

// NewSourceExporter creates a SourceExporter.
func NewSourceExporter() *SourceExporter {
	return &SourceExporter{}
}

// Export returns the document text as bytes (passthrough).
func (e *SourceExporter) Export(snap core.Snapshot) ([]byte, error) {
	return []byte(snap.Text), nil
}

// Extension returns the file extension for Markdown output.
func (e *SourceExporter) Extension() string {
	return ".md"
}

// MediaType returns the markdown media type.
func (e *SourceExporter) MediaType() string {
	return "text/markdown; charset=utf-8"
}
