package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders the snapshot's rendered output as a PDF using gofpdf.
// Images are written as their alternative text; nothing is fetched.
type PDFExporter struct{}

// NewPDFExporter creates a PDFExporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// headingSizes maps heading level to font size in points.
var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14, 4: 12, 5: 11, 6: 10}

const (
	bodySize   = 10.0
	codeSize   = 9.0
	lineHeight = 5.0
	codeLine   = 4.5
	listIndent = 6.0
)

// Export converts the rendered output into PDF bytes.
func (r *PDFExporter) Export(snap core.Snapshot) ([]byte, error) {
	if snap.Output == nil {
		return nil, fmt.Errorf("snapshot has no rendered output")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(snap.Title, true)
	pdf.AddPage()

	left, _, _, _ := pdf.GetMargins()
	w := &pdfWriter{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		left: left,
		base: bodyStyle(),
	}
	w.blocks(snap.Output.Children, 0)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFExporter) Extension() string {
	return ".pdf"
}

// MediaType returns the PDF media type.
func (r *PDFExporter) MediaType() string {
	return "application/pdf"
}

// textStyle is the inherited inline state while walking an element tree.
type textStyle struct {
	family string
	bold   bool
	italic bool
	strike bool
	size   float64
	color  [3]int
	href   string
}

func (s textStyle) fontStyle() string {
	var b strings.Builder
	if s.bold {
		b.WriteString("B")
	}
	if s.italic {
		b.WriteString("I")
	}
	if s.strike {
		b.WriteString("S")
	}
	return b.String()
}

var (
	black = [3]int{17, 24, 39}
	gray  = [3]int{75, 85, 99}
	blue  = [3]int{37, 99, 235}
	white = [3]int{255, 255, 255}

	codeBand = [3]int{246, 248, 250}
)

func bodyStyle() textStyle {
	return textStyle{family: "Helvetica", size: bodySize, color: black}
}

type pdfWriter struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	left         float64
	preformatted bool

	// base is the style paragraphs start from; containers such as
	// blockquotes override it for their contents.
	base textStyle
}

// blocks renders sibling elements, gathering consecutive inline children
// into one flowed paragraph.
func (w *pdfWriter) blocks(children []*core.Element, indent float64) {
	var pending []*core.Element
	flush := func() {
		if len(pending) == 0 {
			return
		}
		w.paragraph(pending, indent, w.base)
		pending = nil
	}
	for _, child := range children {
		if isBlockElement(child) {
			flush()
			w.block(child, indent)
			continue
		}
		pending = append(pending, child)
	}
	flush()
}

func (w *pdfWriter) block(el *core.Element, indent float64) {
	pdf := w.pdf
	switch el.Tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(el.Tag[1:])
		w.heading(el, level, indent)

	case "p":
		w.paragraph(el.Children, indent, w.base)
		pdf.Ln(2)

	case "ul", "ol":
		w.list(el, indent)
		pdf.Ln(1)

	case "blockquote":
		style := w.base
		style.italic = true
		style.color = gray
		y := pdf.GetY()
		w.withStyle(style, func() { w.blocks(el.Children, indent+listIndent) })
		pdf.SetDrawColor(209, 213, 219)
		pdf.SetLineWidth(1)
		pdf.Line(w.left+indent+1, y, w.left+indent+1, pdf.GetY())
		pdf.SetLineWidth(0.2)
		pdf.Ln(2)

	case "hr":
		pdf.Ln(3)
		pageWidth, _ := pdf.GetPageSize()
		_, _, right, _ := pdf.GetMargins()
		pdf.SetDrawColor(229, 231, 235)
		pdf.Line(w.left+indent, pdf.GetY(), pageWidth-right, pdf.GetY())
		pdf.Ln(3)

	case "pre":
		w.code(el, indent)
		pdf.Ln(2)

	case "table":
		w.table(el, indent)
		pdf.Ln(3)

	default:
		if el.HasClass("md-code-label") {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "", 8)
			pdf.SetTextColor(gray[0], gray[1], gray[2])
			pdf.SetX(w.left + indent)
			pdf.CellFormat(0, 5, w.tr(el.TextContent()), "", 1, "L", false, 0, "")
			return
		}
		w.blocks(el.Children, indent)
	}
}

func (w *pdfWriter) heading(el *core.Element, level int, indent float64) {
	size, ok := headingSizes[level]
	if !ok {
		size = bodySize
	}
	style := w.base
	style.bold = true
	style.size = size
	if level == 6 {
		style.color = gray
	}

	w.pdf.Ln(4)
	w.paragraph(el.Children, indent, style)
	if level <= 2 {
		pageWidth, _ := w.pdf.GetPageSize()
		_, _, right, _ := w.pdf.GetMargins()
		w.pdf.SetDrawColor(229, 231, 235)
		w.pdf.Line(w.left+indent, w.pdf.GetY()+1, pageWidth-right, w.pdf.GetY()+1)
	}
	w.pdf.Ln(3)
}

func (w *pdfWriter) list(el *core.Element, indent float64) {
	counter := 1
	if start, ok := el.Attr("start"); ok {
		if n, err := strconv.Atoi(start); err == nil {
			counter = n
		}
	}
	for _, item := range el.Children {
		if item.Tag != "li" {
			continue
		}
		bullet := "•"
		if el.Tag == "ol" {
			bullet = strconv.Itoa(counter) + "."
			counter++
		}
		w.pdf.SetFont("Helvetica", "", bodySize)
		w.pdf.SetTextColor(black[0], black[1], black[2])
		w.pdf.SetX(w.left + indent)
		w.pdf.CellFormat(listIndent, lineHeight, w.tr(bullet), "", 0, "L", false, 0, "")
		w.blocks(item.Children, indent+listIndent)
	}
}

// paragraph flows inline children with wrapped lines starting at indent.
func (w *pdfWriter) paragraph(children []*core.Element, indent float64, style textStyle) {
	pdf := w.pdf
	pdf.SetLeftMargin(w.left + indent)
	if pdf.GetX() < w.left+indent {
		pdf.SetX(w.left + indent)
	}
	height := style.size * 0.5
	if height < lineHeight {
		height = lineHeight
	}
	for _, child := range children {
		w.inline(child, style, height)
	}
	pdf.Ln(height)
	pdf.SetLeftMargin(w.left)
}

func (w *pdfWriter) inline(el *core.Element, style textStyle, height float64) {
	pdf := w.pdf
	if el.IsText() {
		text := el.Text
		if !w.preformatted {
			text = strings.ReplaceAll(text, "\n", " ")
		}
		pdf.SetFont(style.family, style.fontStyle(), style.size)
		pdf.SetTextColor(style.color[0], style.color[1], style.color[2])
		if style.href != "" {
			pdf.WriteLinkString(height, w.tr(text), style.href)
			return
		}
		pdf.Write(height, w.tr(text))
		return
	}

	switch el.Tag {
	case "strong":
		style.bold = true
	case "em":
		style.italic = true
	case "del":
		style.strike = true
	case "br":
		pdf.Ln(height)
		return
	case "a":
		style.color = blue
		style.href, _ = el.Attr("href")
	case "code":
		if el.HasClass("md-inline-code") {
			style.family = "Courier"
		}
	case "span":
		if css, ok := el.Attr("style"); ok {
			style = applyInlineCSS(style, css)
		}
	case "img":
		alt, _ := el.Attr("alt")
		style.italic = true
		style.color = gray
		w.inline(core.TextEl("[image: "+alt+"]"), style, height)
		return
	case "input":
		mark := "[ ] "
		if _, checked := el.Attr("checked"); checked {
			mark = "[x] "
		}
		w.inline(core.TextEl(mark), style, height)
		return
	}
	for _, child := range el.Children {
		w.inline(child, style, height)
	}
}

// code draws each source line on a filled band, keeping token colours.
func (w *pdfWriter) code(el *core.Element, indent float64) {
	pdf := w.pdf
	style := textStyle{family: "Courier", size: codeSize, color: black}
	fill := codeBand
	if css, ok := el.Attr("style"); ok {
		style = applyInlineCSS(style, css)
		fill = codeFill(css)
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	_, _, right, bottom := pdf.GetMargins()
	width := pageWidth - right - w.left - indent

	lines := splitLines(el)
	pdf.SetLeftMargin(w.left + indent + 2)
	w.preformatted = true
	for _, line := range lines {
		if pdf.GetY()+codeLine > pageHeight-bottom {
			pdf.AddPage()
		}
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		pdf.Rect(w.left+indent, pdf.GetY(), width, codeLine, "F")
		pdf.SetX(w.left + indent + 2)
		for _, run := range line {
			w.inline(run, style, codeLine)
		}
		pdf.Ln(codeLine)
	}
	w.preformatted = false
	pdf.SetLeftMargin(w.left)
}

// splitLines breaks the text runs under a pre element into lines of
// single-line runs, each run wrapped in its original inline styling.
func splitLines(pre *core.Element) [][]*core.Element {
	lines := [][]*core.Element{nil}
	var visit func(el *core.Element, wrap func(*core.Element) *core.Element)
	visit = func(el *core.Element, wrap func(*core.Element) *core.Element) {
		if el.IsText() {
			parts := strings.Split(el.Text, "\n")
			for i, part := range parts {
				if i > 0 {
					lines = append(lines, nil)
				}
				if part != "" {
					lines[len(lines)-1] = append(lines[len(lines)-1], wrap(core.TextEl(part)))
				}
			}
			return
		}
		inner := wrap
		if el.Tag == "span" {
			attrs := el.Attrs
			inner = func(child *core.Element) *core.Element {
				return wrap(core.El("span", attrs, child))
			}
		}
		for _, child := range el.Children {
			visit(child, inner)
		}
	}
	for _, child := range pre.Children {
		visit(child, func(e *core.Element) *core.Element { return e })
	}
	return lines
}

func (w *pdfWriter) table(el *core.Element, indent float64) {
	pdf := w.pdf
	rows := el.Find(func(e *core.Element) bool { return e.Tag == "tr" })
	columns := 0
	for _, row := range rows {
		if len(row.Children) > columns {
			columns = len(row.Children)
		}
	}
	if columns == 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	cellWidth := (pageWidth - right - w.left - indent) / float64(columns)

	pdf.SetDrawColor(209, 213, 219)
	pdf.SetFillColor(243, 244, 246)
	pdf.SetTextColor(black[0], black[1], black[2])
	for _, row := range rows {
		pdf.SetX(w.left + indent)
		for _, cell := range row.Children {
			header := cell.Tag == "th"
			fontStyle := ""
			if header {
				fontStyle = "B"
			}
			align := "L"
			if css, ok := cell.Attr("style"); ok {
				switch {
				case strings.Contains(css, "center"):
					align = "C"
				case strings.Contains(css, "right"):
					align = "R"
				}
			}
			pdf.SetFont("Helvetica", fontStyle, bodySize)
			text := strings.ReplaceAll(cell.TextContent(), "\n", " ")
			pdf.CellFormat(cellWidth, 7, w.tr(text), "1", 0, align, header, 0, "")
		}
		pdf.Ln(-1)
	}
}

// withStyle runs fn with paragraphs starting from style.
func (w *pdfWriter) withStyle(style textStyle, fn func()) {
	saved := w.base
	w.base = style
	defer func() { w.base = saved }()
	fn()
}

func applyInlineCSS(style textStyle, css string) textStyle {
	for _, decl := range strings.Split(css, ";") {
		property, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(property) {
		case "color":
			if rgb, ok := parseHex(value); ok {
				style.color = rgb
			}
		case "font-weight":
			style.bold = value == "bold"
		case "font-style":
			style.italic = value == "italic"
		}
	}
	return style
}

// codeFill returns the band colour for a code block. Token colours are
// chosen against the style's own background, so the band follows it; a
// white background keeps the grey band to stay visible on paper.
func codeFill(css string) [3]int {
	for _, decl := range strings.Split(css, ";") {
		property, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(property) != "background-color" {
			continue
		}
		if rgb, ok := parseHex(strings.TrimSpace(value)); ok && rgb != white {
			return rgb
		}
	}
	return codeBand
}

func parseHex(value string) ([3]int, bool) {
	value = strings.TrimPrefix(value, "#")
	if len(value) != 6 {
		return [3]int{}, false
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return [3]int{}, false
	}
	return [3]int{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
}

var blockElements = map[string]bool{
	"div": true, "p": true, "ul": true, "ol": true, "li": true,
	"blockquote": true, "pre": true, "table": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func isBlockElement(el *core.Element) bool {
	return !el.IsText() && blockElements[el.Tag]
}
