package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/mdpreview/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RawTag marks an element whose text child is written without escaping.
const RawTag = "#raw"

// WriteHTML serializes an element tree as HTML.
func WriteHTML(w io.Writer, el *core.Element) error {
	if el == nil {
		return nil
	}
	if err := html.Render(w, toHTMLNode(el)); err != nil {
		return fmt.Errorf("writing HTML: %w", err)
	}
	return nil
}

// HTML serializes an element tree to a string.
func HTML(el *core.Element) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, el); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toHTMLNode(el *core.Element) *html.Node {
	if el.IsText() {
		return &html.Node{Type: html.TextNode, Data: el.Text}
	}
	if el.Tag == RawTag {
		return &html.Node{Type: html.RawNode, Data: el.TextContent()}
	}

	node := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
	}
	for _, attr := range el.Attrs {
		node.Attr = append(node.Attr, html.Attribute{Key: attr.Key, Val: attr.Val})
	}
	for _, child := range el.Children {
		node.AppendChild(toHTMLNode(child))
	}
	return node
}
