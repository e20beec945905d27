package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/mdpreview/core"
)

// Heading represents a single heading found in the document.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the document.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Structure summarizes the document's structural elements.
type Structure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	CodeBlocks int       `json:"code_blocks"`
	Tables     int       `json:"tables"`
	Lists      int       `json:"lists"`
	Images     int       `json:"images"`
}

// TreeNode is the JSON form of one document node.
type TreeNode struct {
	Kind     string            `json:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []TreeNode        `json:"children,omitempty"`
}

// DocumentJSON is the complete JSON output for a document.
type DocumentJSON struct {
	Title     string    `json:"title"`
	Theme     string    `json:"theme"`
	Structure Structure `json:"structure"`
	Tree      TreeNode  `json:"tree"`
}

// JSONExporter dumps the node tree with a structural summary.
type JSONExporter struct{}

// NewJSONExporter creates a JSONExporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts the snapshot's node tree into indented JSON.
func (e *JSONExporter) Export(snap core.Snapshot) ([]byte, error) {
	if snap.Document == nil {
		return nil, fmt.Errorf("snapshot has no document")
	}
	page := DocumentJSON{
		Title:     snap.Title,
		Theme:     snap.Theme.String(),
		Structure: Summarize(snap.Document),
		Tree:      treeNode(snap.Document),
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (e *JSONExporter) Extension() string {
	return ".json"
}

// MediaType returns the JSON media type.
func (e *JSONExporter) MediaType() string {
	return "application/json"
}

// Summarize counts the structural elements of doc.
func Summarize(doc *core.Document) Structure {
	s := Structure{Headings: []Heading{}, Links: []Link{}}
	core.Walk(doc, func(n core.Node) bool {
		switch n := n.(type) {
		case *core.Heading:
			s.Headings = append(s.Headings, Heading{Level: n.Level, Text: strings.TrimSpace(core.PlainText(n))})
		case *core.Link:
			s.Links = append(s.Links, Link{Text: core.PlainText(n), Href: n.Href})
		case *core.CodeBlock:
			s.CodeBlocks++
		case *core.Table:
			s.Tables++
		case *core.List:
			s.Lists++
		case *core.Image:
			s.Images++
		}
		return true
	})
	return s
}

func treeNode(n core.Node) TreeNode {
	t := TreeNode{Kind: n.Kind().String()}
	attrs := map[string]string{}
	switch n := n.(type) {
	case *core.Heading:
		attrs["level"] = fmt.Sprint(n.Level)
	case *core.List:
		attrs["ordered"] = fmt.Sprint(n.Ordered)
		if n.Ordered {
			attrs["start"] = fmt.Sprint(n.Start)
		}
		attrs["tight"] = fmt.Sprint(n.Tight)
	case *core.TaskCheckBox:
		attrs["checked"] = fmt.Sprint(n.Checked)
	case *core.Link:
		attrs["href"] = n.Href
		if n.Title != "" {
			attrs["title"] = n.Title
		}
	case *core.Image:
		attrs["src"] = n.Src
		attrs["alt"] = n.Alt
		if n.Title != "" {
			attrs["title"] = n.Title
		}
	case *core.CodeSpan:
		t.Text = n.Code
	case *core.CodeBlock:
		if n.Language != "" {
			attrs["language"] = n.Language
		}
		attrs["fenced"] = fmt.Sprint(n.Fenced)
		t.Text = n.Code
	case *core.TableRow:
		attrs["header"] = fmt.Sprint(n.Header)
	case *core.TableCell:
		if align := n.Align.String(); align != "" {
			attrs["align"] = align
		}
	case *core.Text:
		t.Text = n.Value
	case *core.RawHTML:
		t.Text = n.HTML
	case *core.HTMLBlock:
		t.Text = n.HTML
	case *core.Generic:
		attrs["name"] = n.Name
	}
	if len(attrs) > 0 {
		t.Attrs = attrs
	}
	for _, child := range n.Children() {
		t.Children = append(t.Children, treeNode(child))
	}
	return t
}
