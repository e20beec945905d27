// Package parse turns markdown source into a core.Document using goldmark
// with the GitHub Flavored Markdown extensions (tables, strikethrough,
// autolinks, task lists).
package parse

import (
	"bytes"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// markdownInstance is built once. The configuration never changes and
// goldmark's parser keeps its per-call state in the reader, so sharing it
// is safe.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// Parser implements core.Parser on top of goldmark.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse converts source into a fresh document tree. It never fails.
func (p *Parser) Parse(source string) *core.Document {
	src := []byte(source)
	root := getMarkdown().Parser().Parse(text.NewReader(src))

	c := &converter{source: src}
	doc := &core.Document{}
	doc.Nodes = c.children(root)
	return doc
}

// converter maps goldmark AST nodes onto core node variants.
type converter struct {
	source []byte
}

func (c *converter) children(parent ast.Node) []core.Node {
	var out []core.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		for _, node := range c.convert(child) {
			out = appendMerged(out, node)
		}
	}
	return out
}

// appendMerged appends node, folding adjacent text runs together. goldmark
// splits text at delimiter characters that end up unmatched.
func appendMerged(nodes []core.Node, node core.Node) []core.Node {
	if t, ok := node.(*core.Text); ok && len(nodes) > 0 {
		if prev, ok := nodes[len(nodes)-1].(*core.Text); ok {
			prev.Value += t.Value
			return nodes
		}
	}
	return append(nodes, node)
}

func (c *converter) convert(node ast.Node) []core.Node {
	switch n := node.(type) {

	// Block nodes.
	case *ast.Heading:
		h := &core.Heading{Level: n.Level}
		h.Nodes = c.children(n)
		return one(h)

	case *ast.Paragraph:
		p := &core.Paragraph{}
		p.Nodes = c.children(n)
		return one(p)

	case *ast.TextBlock:
		// Tight list items wrap their inline content in a TextBlock; the
		// content belongs directly to the item.
		inlines := c.children(n)
		if n.NextSibling() != nil && n.NextSibling().Kind() == ast.KindTextBlock {
			inlines = append(inlines, &core.Text{Value: "\n"})
		}
		return inlines

	case *ast.Blockquote:
		q := &core.Blockquote{}
		q.Nodes = c.children(n)
		return one(q)

	case *ast.List:
		l := &core.List{Ordered: n.IsOrdered(), Tight: n.IsTight}
		if n.IsOrdered() {
			l.Start = n.Start
		}
		l.Nodes = c.children(n)
		return one(l)

	case *ast.ListItem:
		item := &core.ListItem{}
		item.Nodes = c.children(n)
		return one(item)

	case *ast.ThematicBreak:
		return one(&core.ThematicBreak{})

	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Segment.Value(c.source))
		}
		return one(&core.CodeBlock{
			Info:     info,
			Language: languageOf(info),
			Code:     c.lines(n.Lines()),
			Fenced:   true,
		})

	case *ast.CodeBlock:
		return one(&core.CodeBlock{Code: c.lines(n.Lines())})

	case *ast.HTMLBlock:
		html := c.lines(n.Lines())
		if n.HasClosure() {
			html += string(n.ClosureLine.Value(c.source))
		}
		return one(&core.HTMLBlock{HTML: html})

	// Inline nodes.
	case *ast.Text:
		segment := n.Segment.Value(c.source)
		if !n.IsRaw() {
			segment = unescape(segment)
		}
		value := string(segment)
		if n.SoftLineBreak() {
			value += "\n"
		}
		if n.HardLineBreak() {
			return []core.Node{&core.Text{Value: value}, &core.LineBreak{}}
		}
		return one(&core.Text{Value: value})

	case *ast.String:
		return one(&core.Text{Value: string(n.Value)})

	case *ast.Emphasis:
		if n.Level >= 2 {
			s := &core.Strong{}
			s.Nodes = c.children(n)
			return one(s)
		}
		e := &core.Emphasis{}
		e.Nodes = c.children(n)
		return one(e)

	case *ast.CodeSpan:
		return one(&core.CodeSpan{Code: c.codeSpan(n)})

	case *ast.Link:
		l := &core.Link{Href: string(n.Destination), Title: string(n.Title)}
		l.Nodes = c.children(n)
		return one(l)

	case *ast.AutoLink:
		l := &core.Link{Href: string(n.URL(c.source))}
		l.Nodes = []core.Node{&core.Text{Value: string(n.Label(c.source))}}
		return one(l)

	case *ast.Image:
		return one(&core.Image{
			Src:   string(n.Destination),
			Alt:   flatten(c.children(n)),
			Title: string(n.Title),
		})

	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			b.Write(segment.Value(c.source))
		}
		return one(&core.RawHTML{HTML: b.String()})

	// GFM extension nodes.
	case *extast.Strikethrough:
		s := &core.Strikethrough{}
		s.Nodes = c.children(n)
		return one(s)

	case *extast.TaskCheckBox:
		return one(&core.TaskCheckBox{Checked: n.IsChecked})

	case *extast.Table:
		return one(c.table(n))
	}

	// Anything without a dedicated variant keeps its children.
	g := &core.Generic{Name: node.Kind().String(), Block: node.Type() == ast.TypeBlock}
	g.Nodes = c.children(node)
	return one(g)
}

func (c *converter) table(n *extast.Table) *core.Table {
	t := &core.Table{}
	for _, align := range n.Alignments {
		t.Alignments = append(t.Alignments, alignment(align))
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		header := child.Kind() == extast.KindTableHeader
		row := &core.TableRow{Header: header}
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			tc := &core.TableCell{Header: header}
			if ec, ok := cell.(*extast.TableCell); ok {
				tc.Align = alignment(ec.Alignment)
			}
			tc.Nodes = c.children(cell)
			row.Nodes = append(row.Nodes, tc)
		}
		t.Nodes = append(t.Nodes, row)
	}
	return t
}

func (c *converter) lines(lines *text.Segments) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(c.source))
	}
	return b.String()
}

func (c *converter) codeSpan(n *ast.CodeSpan) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			// A line ending inside a code span reads as a space.
			value := t.Segment.Value(c.source)
			if trimmed, ok := bytes.CutSuffix(value, []byte("\n")); ok {
				b.Write(trimmed)
				b.WriteByte(' ')
			} else {
				b.Write(value)
			}
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}

// languageOf returns the first whitespace-delimited token of a fence info
// string.
func languageOf(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func alignment(a extast.Alignment) core.Alignment {
	switch a {
	case extast.AlignLeft:
		return core.AlignLeft
	case extast.AlignCenter:
		return core.AlignCenter
	case extast.AlignRight:
		return core.AlignRight
	}
	return core.AlignNone
}

func flatten(nodes []core.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(core.PlainText(n))
	}
	return b.String()
}

// unescape resolves backslash escapes and character references in text.
func unescape(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}

func one(n core.Node) []core.Node { return []core.Node{n} }
