// Package render maps a document node tree onto a styled element tree and
// writes element trees to display surfaces (HTML for the browser preview,
// ANSI text for terminals).
//
// Render is a pure function of (document, theme): the theme is always
// passed in, never read from ambient state, so two calls with equal inputs
// produce equal output.
package render

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/highlight"
)

// Renderer is the node renderer. The zero value is not usable; call New.
type Renderer struct {
	highlighter core.Highlighter
	unsafeHTML  bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighter replaces the default Chroma highlighter.
func WithHighlighter(h core.Highlighter) Option {
	return func(r *Renderer) { r.highlighter = h }
}

// WithUnsafeHTML emits raw HTML from the source verbatim instead of
// escaping it.
func WithUnsafeHTML(unsafe bool) Option {
	return func(r *Renderer) { r.unsafeHTML = unsafe }
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.highlighter == nil {
		r.highlighter = highlight.New()
	}
	return r
}

// Render renders doc with a default Renderer.
func Render(doc *core.Document, theme core.Theme, opts ...Option) *core.Element {
	return New(opts...).Render(doc, theme)
}

// Render maps doc onto an element tree rooted at div.md-preview.
func (r *Renderer) Render(doc *core.Document, theme core.Theme) *core.Element {
	root := core.El("div", core.Class("md-preview theme-"+theme.String()))
	if doc == nil {
		return root
	}
	root.Append(r.renderChildren(doc, theme)...)
	return root
}

func (r *Renderer) renderChildren(n core.Node, theme core.Theme) []*core.Element {
	children := n.Children()
	out := make([]*core.Element, 0, len(children))
	for _, child := range children {
		out = append(out, r.renderNode(child, theme))
	}
	return out
}

// element builds tag with class and the rendered children of n.
func (r *Renderer) element(tag, class string, n core.Node, theme core.Theme) *core.Element {
	var attrs []core.Attr
	if class != "" {
		attrs = core.Class(class)
	}
	return core.El(tag, attrs, r.renderChildren(n, theme)...)
}

// renderNode is the single dispatch point from node variant to element.
func (r *Renderer) renderNode(node core.Node, theme core.Theme) *core.Element {
	switch n := node.(type) {
	case *core.Heading:
		level := clampLevel(n.Level)
		return r.element("h"+strconv.Itoa(level), "md-h"+strconv.Itoa(level), n, theme)

	case *core.Paragraph:
		return r.element("p", "md-p", n, theme)

	case *core.Emphasis:
		return r.element("em", "md-em", n, theme)

	case *core.Strong:
		return r.element("strong", "md-strong", n, theme)

	case *core.Strikethrough:
		return r.element("del", "md-del", n, theme)

	case *core.List:
		return r.renderList(n, theme)

	case *core.ListItem:
		return r.element("li", "md-li", n, theme)

	case *core.TaskCheckBox:
		attrs := []core.Attr{{Key: "type", Val: "checkbox"}, {Key: "class", Val: "md-task"}, {Key: "disabled", Val: ""}}
		if n.Checked {
			attrs = append(attrs, core.Attr{Key: "checked", Val: ""})
		}
		return core.El("input", attrs)

	case *core.Blockquote:
		return r.element("blockquote", "md-blockquote", n, theme)

	case *core.ThematicBreak:
		return core.El("hr", core.Class("md-hr"))

	case *core.Link:
		return r.renderLink(n, theme)

	case *core.Image:
		return renderImage(n)

	case *core.CodeSpan:
		return core.El("code", core.Class("md-inline-code"), core.TextEl(n.Code))

	case *core.CodeBlock:
		return r.renderCodeBlock(n, theme)

	case *core.Table:
		return r.renderTable(n, theme)

	case *core.TableRow:
		return r.element("tr", "", n, theme)

	case *core.TableCell:
		return r.renderCell(n, theme)

	case *core.Text:
		return core.TextEl(n.Value)

	case *core.LineBreak:
		return core.El("br", nil)

	case *core.RawHTML:
		return r.renderHTML(n.HTML, "span")

	case *core.HTMLBlock:
		return r.renderHTML(n.HTML, "div")

	case *core.Generic:
		if n.Block {
			return r.element("div", "md-generic", n, theme)
		}
		return r.element("span", "md-generic", n, theme)
	}

	// Unknown variants still contribute their children.
	return r.element("span", "md-generic", node, theme)
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func (r *Renderer) renderList(n *core.List, theme core.Theme) *core.Element {
	if !n.Ordered {
		return r.element("ul", "md-ul", n, theme)
	}
	list := r.element("ol", "md-ol", n, theme)
	if n.Start != 0 && n.Start != 1 {
		list.SetAttr("start", strconv.Itoa(n.Start))
	}
	return list
}

// renderLink keeps Href byte-for-byte. A link without a destination gets
// an empty href rather than being dropped.
func (r *Renderer) renderLink(n *core.Link, theme core.Theme) *core.Element {
	attrs := []core.Attr{{Key: "href", Val: n.Href}, {Key: "class", Val: "md-link"}}
	if n.Title != "" {
		attrs = append(attrs, core.Attr{Key: "title", Val: n.Title})
	}
	return core.El("a", attrs, r.renderChildren(n, theme)...)
}

// renderImage always writes an alt attribute, empty when the source has
// none.
func renderImage(n *core.Image) *core.Element {
	attrs := []core.Attr{
		{Key: "src", Val: n.Src},
		{Key: "alt", Val: n.Alt},
	}
	if n.Title != "" {
		attrs = append(attrs, core.Attr{Key: "title", Val: n.Title})
	}
	attrs = append(attrs,
		core.Attr{Key: "class", Val: "md-img"},
		core.Attr{Key: "loading", Val: "lazy"},
	)
	return core.El("img", attrs)
}

// renderCodeBlock routes tagged blocks through the highlighter and renders
// untagged blocks as plain preformatted text in the same frame.
func (r *Renderer) renderCodeBlock(n *core.CodeBlock, theme core.Theme) *core.Element {
	frame := core.El("div", core.Class("md-code"))
	if n.Language == "" {
		code := strings.TrimSuffix(n.Code, "\n")
		frame.Append(core.El("pre", core.Class("md-code-body"), core.El("code", nil, core.TextEl(code))))
		return frame
	}

	frame.SetAttr("data-language", n.Language)
	frame.Append(core.El("div", core.Class("md-code-label"), core.TextEl(n.Language)))
	body, _ := r.highlighter.Highlight(n.Code, n.Language, theme)
	frame.Append(body)
	return frame
}

// renderTable keeps every row exactly as wide as the parser made it.
func (r *Renderer) renderTable(n *core.Table, theme core.Theme) *core.Element {
	table := core.El("table", core.Class("md-table"))
	var body *core.Element
	for _, child := range n.Children() {
		row, ok := child.(*core.TableRow)
		if !ok {
			continue
		}
		tr := r.renderNode(row, theme)
		if row.Header {
			table.Append(core.El("thead", nil, tr))
			continue
		}
		if body == nil {
			body = core.El("tbody", nil)
			table.Append(body)
		}
		body.Append(tr)
	}
	return core.El("div", core.Class("md-table-wrap"), table)
}

func (r *Renderer) renderCell(n *core.TableCell, theme core.Theme) *core.Element {
	tag, class := "td", "md-td"
	if n.Header {
		tag, class = "th", "md-th"
	}
	cell := r.element(tag, class, n, theme)
	if align := n.Align.String(); align != "" {
		cell.SetAttr("style", "text-align:"+align)
	}
	return cell
}

// renderHTML shows raw HTML as text unless unsafe output was requested, in
// which case the returned element is marked for verbatim serialization.
func (r *Renderer) renderHTML(html, tag string) *core.Element {
	if r.unsafeHTML {
		return core.El(RawTag, nil, core.TextEl(html))
	}
	return core.El(tag, core.Class("md-raw-html"), core.TextEl(html))
}
