package core

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindHeading
	KindParagraph
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindList
	KindListItem
	KindTaskCheckBox
	KindBlockquote
	KindThematicBreak
	KindLink
	KindImage
	KindCodeSpan
	KindCodeBlock
	KindTable
	KindTableRow
	KindTableCell
	KindText
	KindLineBreak
	KindRawHTML
	KindHTMLBlock
	KindGeneric
)

var kindNames = [...]string{
	KindDocument:      "document",
	KindHeading:       "heading",
	KindParagraph:     "paragraph",
	KindEmphasis:      "emphasis",
	KindStrong:        "strong",
	KindStrikethrough: "strikethrough",
	KindList:          "list",
	KindListItem:      "list_item",
	KindTaskCheckBox:  "task_checkbox",
	KindBlockquote:    "blockquote",
	KindThematicBreak: "thematic_break",
	KindLink:          "link",
	KindImage:         "image",
	KindCodeSpan:      "code_span",
	KindCodeBlock:     "code_block",
	KindTable:         "table",
	KindTableRow:      "table_row",
	KindTableCell:     "table_cell",
	KindText:          "text",
	KindLineBreak:     "line_break",
	KindRawHTML:       "raw_html",
	KindHTMLBlock:     "html_block",
	KindGeneric:       "generic",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is one vertex of a document node tree. Each node kind is its own
// Go type; consumers dispatch with a type switch.
type Node interface {
	Kind() NodeKind
	Children() []Node
}

// Container holds ordered child nodes.
type Container struct {
	Nodes []Node
}

func (c *Container) Children() []Node { return c.Nodes }

// Append adds children in order.
func (c *Container) Append(nodes ...Node) { c.Nodes = append(c.Nodes, nodes...) }

type leaf struct{}

func (leaf) Children() []Node { return nil }

// Document is the root of a node tree.
type Document struct{ Container }

// Heading has a Level from 1 to 6.
type Heading struct {
	Level int
	Container
}

type Paragraph struct{ Container }

type Emphasis struct{ Container }

type Strong struct{ Container }

type Strikethrough struct{ Container }

// List is an ordered or unordered list. Start is the first number of an
// ordered list. Tight lists render their items without paragraph spacing.
type List struct {
	Ordered bool
	Start   int
	Tight   bool
	Container
}

type ListItem struct{ Container }

// TaskCheckBox is the "[ ]" or "[x]" marker at the start of a task list item.
type TaskCheckBox struct {
	Checked bool
	leaf
}

type Blockquote struct{ Container }

type ThematicBreak struct{ leaf }

// Link has an optional Href; an empty Href is rendered as-is.
type Link struct {
	Href  string
	Title string
	Container
}

// Image carries its alternative text flattened to plain text.
type Image struct {
	Src   string
	Alt   string
	Title string
	leaf
}

type CodeSpan struct {
	Code string
	leaf
}

// CodeBlock is a fenced or indented code block. Info is the full fence info
// string and Language its first whitespace-delimited token.
type CodeBlock struct {
	Info     string
	Language string
	Code     string
	Fenced   bool
	leaf
}

// Alignment is the column alignment of a table cell.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

// Table children are TableRows; the header row, if any, comes first.
type Table struct {
	Alignments []Alignment
	Container
}

type TableRow struct {
	Header bool
	Container
}

type TableCell struct {
	Header bool
	Align  Alignment
	Container
}

type Text struct {
	Value string
	leaf
}

// LineBreak is a hard line break inside a paragraph.
type LineBreak struct{ leaf }

type RawHTML struct {
	HTML string
	leaf
}

type HTMLBlock struct {
	HTML string
	leaf
}

// Generic wraps a node kind the tree has no variant for. Its children are
// kept so no content is lost.
type Generic struct {
	Name  string
	Block bool
	Container
}

func (*Document) Kind() NodeKind      { return KindDocument }
func (*Heading) Kind() NodeKind       { return KindHeading }
func (*Paragraph) Kind() NodeKind     { return KindParagraph }
func (*Emphasis) Kind() NodeKind      { return KindEmphasis }
func (*Strong) Kind() NodeKind        { return KindStrong }
func (*Strikethrough) Kind() NodeKind { return KindStrikethrough }
func (*List) Kind() NodeKind          { return KindList }
func (*ListItem) Kind() NodeKind      { return KindListItem }
func (*TaskCheckBox) Kind() NodeKind  { return KindTaskCheckBox }
func (*Blockquote) Kind() NodeKind    { return KindBlockquote }
func (*ThematicBreak) Kind() NodeKind { return KindThematicBreak }
func (*Link) Kind() NodeKind          { return KindLink }
func (*Image) Kind() NodeKind         { return KindImage }
func (*CodeSpan) Kind() NodeKind      { return KindCodeSpan }
func (*CodeBlock) Kind() NodeKind     { return KindCodeBlock }
func (*Table) Kind() NodeKind         { return KindTable }
func (*TableRow) Kind() NodeKind      { return KindTableRow }
func (*TableCell) Kind() NodeKind     { return KindTableCell }
func (*Text) Kind() NodeKind          { return KindText }
func (*LineBreak) Kind() NodeKind     { return KindLineBreak }
func (*RawHTML) Kind() NodeKind       { return KindRawHTML }
func (*HTMLBlock) Kind() NodeKind     { return KindHTMLBlock }
func (*Generic) Kind() NodeKind       { return KindGeneric }

// Walk visits node and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}

// PlainText concatenates the visible text under node.
func PlainText(node Node) string {
	var out []byte
	Walk(node, func(n Node) bool {
		switch n := n.(type) {
		case *Text:
			out = append(out, n.Value...)
		case *CodeSpan:
			out = append(out, n.Code...)
		case *CodeBlock:
			out = append(out, n.Code...)
		case *Image:
			out = append(out, n.Alt...)
		case *LineBreak:
			out = append(out, '\n')
		}
		return true
	})
	return string(out)
}
