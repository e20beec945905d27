package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/render"
)

// DocumentExporter produces a standalone printable HTML page: the current
// rendered output plus every style rule it needs, with no reference to the
// live application's assets.
type DocumentExporter struct {
	// AutoPrint adds a script that opens the print dialog once the page
	// has loaded.
	AutoPrint bool
}

// NewDocumentExporter creates a DocumentExporter.
func NewDocumentExporter(autoPrint bool) *DocumentExporter {
	return &DocumentExporter{AutoPrint: autoPrint}
}

// Export writes the snapshot's rendered output as a complete HTML page.
func (e *DocumentExporter) Export(snap core.Snapshot) ([]byte, error) {
	if snap.Output == nil {
		return nil, fmt.Errorf("snapshot has no rendered output")
	}
	title := snap.Title
	if title == "" {
		title = core.DefaultTitle
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("<style>\n")
	buf.WriteString(PrintStylesheet(snap.Theme).String())
	buf.WriteString("\n</style>\n</head>\n<body>\n")
	if err := render.WriteHTML(&buf, snap.Output); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	if e.AutoPrint {
		buf.WriteString("<script>window.addEventListener(\"load\", function () { window.print(); });</script>\n")
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Extension returns the file extension for HTML output.
func (e *DocumentExporter) Extension() string {
	return ".html"
}

// MediaType returns the HTML media type.
func (e *DocumentExporter) MediaType() string {
	return "text/html; charset=utf-8"
}
