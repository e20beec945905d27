package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/muesli/termenv"
)

// TerminalOptions configures WriteTerminal.
type TerminalOptions struct {
	// Width is the wrap width in cells. Values below 20 are raised to 20.
	Width int
	// Profile is the colour profile to emit. termenv.Ascii disables colour.
	Profile termenv.Profile
	// Theme selects the chrome palette (headings, links, rules).
	Theme core.Theme
}

// palette is the chrome colour set for one theme.
type palette struct {
	heading lipgloss.Color
	text    lipgloss.Color
	faint   lipgloss.Color
	link    lipgloss.Color
	border  lipgloss.Color
}

var palettes = map[core.Theme]palette{
	core.Light: {heading: "#111827", text: "#111827", faint: "#6b7280", link: "#2563eb", border: "#d1d5db"},
	core.Dark:  {heading: "#f3f4f6", text: "#f3f4f6", faint: "#9ca3af", link: "#60a5fa", border: "#4b5563"},
}

// WriteTerminal writes an element tree as styled terminal text.
func WriteTerminal(w io.Writer, el *core.Element, opts TerminalOptions) error {
	if opts.Width < 20 {
		opts.Width = 20
	}
	lip := lipgloss.NewRenderer(w, termenv.WithProfile(opts.Profile))
	lip.SetColorProfile(opts.Profile)

	t := &terminalWriter{
		lip:     lip,
		width:   opts.Width,
		palette: palettes[opts.Theme],
	}
	t.blocks(el.Children, "")
	output := strings.TrimRight(strings.Join(t.lines, "\n"), "\n")
	if output == "" {
		return nil
	}
	if _, err := io.WriteString(w, output+"\n"); err != nil {
		return fmt.Errorf("writing terminal output: %w", err)
	}
	return nil
}

type terminalWriter struct {
	lip     *lipgloss.Renderer
	width   int
	palette palette
	lines   []string

	// preformatted keeps newlines inside code blocks.
	preformatted bool
}

func (t *terminalWriter) style() lipgloss.Style {
	return t.lip.NewStyle()
}

func (t *terminalWriter) emit(lines ...string) {
	t.lines = append(t.lines, lines...)
}

func (t *terminalWriter) blankLine() {
	if len(t.lines) > 0 && t.lines[len(t.lines)-1] != "" {
		t.lines = append(t.lines, "")
	}
}

// blocks renders a run of sibling elements. Consecutive inline children
// are gathered into one wrapped paragraph.
func (t *terminalWriter) blocks(children []*core.Element, prefix string) {
	var pending []*core.Element
	flush := func() {
		if len(pending) == 0 {
			return
		}
		t.paragraph(t.inlines(pending, t.style().Foreground(t.palette.text)), prefix, prefix)
		pending = nil
	}
	for _, child := range children {
		if isBlock(child) {
			flush()
			t.block(child, prefix)
			continue
		}
		pending = append(pending, child)
	}
	flush()
}

func (t *terminalWriter) block(el *core.Element, prefix string) {
	switch el.Tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(el.Tag[1:])
		style := t.style().Bold(true).Foreground(t.palette.heading)
		if level == 1 {
			style = style.Underline(true)
		}
		marker := strings.Repeat("#", level) + " "
		t.blankLine()
		t.paragraph(style.Render(marker)+t.inlines(el.Children, style), prefix, prefix)
		t.blankLine()

	case "p":
		t.paragraph(t.inlines(el.Children, t.style().Foreground(t.palette.text)), prefix, prefix)
		t.blankLine()

	case "ul", "ol":
		t.list(el, prefix)
		if prefix == "" {
			t.blankLine()
		}

	case "blockquote":
		bar := t.style().Foreground(t.palette.border).Render("│ ")
		t.blocks(el.Children, prefix+bar)
		t.blankLine()

	case "hr":
		t.blankLine()
		rule := strings.Repeat("─", max(1, t.width-ansi.StringWidth(prefix)))
		t.emit(prefix + t.style().Foreground(t.palette.border).Render(rule))
		t.blankLine()

	case "pre":
		t.code(el, prefix)
		t.blankLine()

	case "table":
		t.table(el, prefix)
		t.blankLine()

	default:
		if el.HasClass("md-code-label") {
			t.emit(prefix + t.style().Foreground(t.palette.faint).Render(el.TextContent()))
			return
		}
		t.blocks(el.Children, prefix)
	}
}

func (t *terminalWriter) list(el *core.Element, prefix string) {
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
		bullet := "- "
		if el.Tag == "ol" {
			bullet = strconv.Itoa(counter) + ". "
			counter++
		}
		continuation := prefix + strings.Repeat(" ", len(bullet))
		first := true
		var pending []*core.Element
		flush := func() {
			if len(pending) == 0 {
				return
			}
			head := continuation
			if first {
				head = prefix + bullet
				first = false
			}
			t.paragraph(t.inlines(pending, t.style().Foreground(t.palette.text)), head, continuation)
			pending = nil
		}
		for _, child := range item.Children {
			if !isBlock(child) {
				pending = append(pending, child)
				continue
			}
			flush()
			if first {
				t.emit(prefix + bullet)
				first = false
			}
			t.block(child, continuation)
		}
		flush()
		if first {
			t.emit(prefix + bullet)
		}
	}
}

func (t *terminalWriter) code(el *core.Element, prefix string) {
	var b strings.Builder
	base := t.style().Foreground(t.palette.faint)
	t.preformatted = true
	for _, child := range el.Children {
		b.WriteString(t.inline(child, base))
	}
	t.preformatted = false
	for _, line := range strings.Split(b.String(), "\n") {
		t.emit(prefix + "  " + line)
	}
}

func (t *terminalWriter) table(el *core.Element, prefix string) {
	var rows [][]string
	header := -1
	for _, tr := range el.Find(func(e *core.Element) bool { return e.Tag == "tr" }) {
		var cells []string
		for _, cell := range tr.Children {
			style := t.style().Foreground(t.palette.text)
			if cell.Tag == "th" {
				style = style.Bold(true)
				header = len(rows)
			}
			cells = append(cells, t.inlines(cell.Children, style))
		}
		rows = append(rows, cells)
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i, row := range rows {
		var b strings.Builder
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if j < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[j]-lipgloss.Width(cell)))
			}
		}
		t.emit(prefix + b.String())
		if i == header {
			total := 0
			for _, w := range widths {
				total += w
			}
			total += 2 * (len(widths) - 1)
			t.emit(prefix + t.style().Foreground(t.palette.border).Render(strings.Repeat("─", total)))
		}
	}
}

// paragraph wraps content to the width left after prefix; the first line
// uses head, later lines use rest.
func (t *terminalWriter) paragraph(content, head, rest string) {
	if strings.TrimSpace(ansi.Strip(content)) == "" {
		return
	}
	width := t.width - ansi.StringWidth(rest)
	if width < 10 {
		width = 10
	}
	wrapped := ansi.Wrap(content, width, " ,.;-+|")
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			t.emit(head + line)
		} else {
			t.emit(rest + line)
		}
	}
}

func (t *terminalWriter) inlines(children []*core.Element, style lipgloss.Style) string {
	var b strings.Builder
	for _, child := range children {
		b.WriteString(t.inline(child, style))
	}
	return b.String()
}

func (t *terminalWriter) inline(el *core.Element, style lipgloss.Style) string {
	if el.IsText() {
		if t.preformatted {
			return renderLines(style, el.Text)
		}
		// Soft line breaks reflow as spaces.
		return style.Render(strings.ReplaceAll(el.Text, "\n", " "))
	}

	switch el.Tag {
	case "strong":
		return t.inlines(el.Children, style.Bold(true))
	case "em":
		return t.inlines(el.Children, style.Italic(true))
	case "del":
		return t.inlines(el.Children, style.Strikethrough(true))
	case "br":
		return "\n"
	case "code":
		if el.HasClass("md-inline-code") {
			return t.style().Foreground(t.palette.faint).Render(el.TextContent())
		}
		return t.inlines(el.Children, style)
	case "span":
		if css, ok := el.Attr("style"); ok {
			style = applyCSS(style, css)
		}
		if el.HasClass("md-raw-html") {
			style = style.Foreground(t.palette.faint)
		}
		return t.inlines(el.Children, style)
	case "a":
		text := t.inlines(el.Children, style.Foreground(t.palette.link).Underline(true))
		href, _ := el.Attr("href")
		if href == "" || href == ansi.Strip(text) {
			return text
		}
		return text + " " + t.style().Foreground(t.palette.faint).Render("("+href+")")
	case "img":
		alt, _ := el.Attr("alt")
		src, _ := el.Attr("src")
		return t.style().Foreground(t.palette.faint).Render("[image: " + alt + "](" + src + ")")
	case "input":
		if _, checked := el.Attr("checked"); checked {
			return "[x] "
		}
		return "[ ] "
	case RawTag:
		return t.style().Foreground(t.palette.faint).Render(el.TextContent())
	}
	return t.inlines(el.Children, style)
}

// renderLines styles each line separately so a newline never sits inside
// an escape sequence.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// applyCSS maps the inline declarations the highlighter emits onto a
// lipgloss style.
func applyCSS(style lipgloss.Style, css string) lipgloss.Style {
	for _, decl := range strings.Split(css, ";") {
		property, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(property) {
		case "color":
			style = style.Foreground(lipgloss.Color(strings.TrimSpace(value)))
		case "font-weight":
			style = style.Bold(strings.TrimSpace(value) == "bold")
		case "font-style":
			style = style.Italic(strings.TrimSpace(value) == "italic")
		case "text-decoration":
			style = style.Underline(strings.TrimSpace(value) == "underline")
		}
	}
	return style
}

var blockTags = map[string]bool{
	"div": true, "p": true, "ul": true, "ol": true, "li": true,
	"blockquote": true, "pre": true, "table": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func isBlock(el *core.Element) bool {
	return !el.IsText() && blockTags[el.Tag]
}
