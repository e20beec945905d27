package core

import "strings"

// Attr is one element attribute. Attributes keep insertion order so that
// serialization is deterministic.
type Attr struct {
	Key string
	Val string
}

// Element is one vertex of the rendered output tree. An Element with an
// empty Tag is a text run holding Text.
type Element struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Children []*Element
}

// El builds an element with the given tag, attributes and children.
func El(tag string, attrs []Attr, children ...*Element) *Element {
	return &Element{Tag: tag, Attrs: attrs, Children: children}
}

// TextEl builds a text run.
func TextEl(text string) *Element {
	return &Element{Text: text}
}

// Class is shorthand for a single class attribute.
func Class(name string) []Attr {
	return []Attr{{Key: "class", Val: name}}
}

// IsText reports whether e is a text run.
func (e *Element) IsText() bool { return e.Tag == "" }

// Append adds children in order, skipping nils.
func (e *Element) Append(children ...*Element) {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr replaces or appends an attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Val = val
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Val: val})
}

// HasClass reports whether the class attribute lists name.
func (e *Element) HasClass(name string) bool {
	classes, _ := e.Attr("class")
	for _, class := range strings.Fields(classes) {
		if class == name {
			return true
		}
	}
	return false
}

// TextContent concatenates all text runs under e.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	if e.IsText() {
		b.WriteString(e.Text)
		return
	}
	for _, child := range e.Children {
		child.writeText(b)
	}
}

// Find returns every element under e (including e) for which match is true,
// in document order.
func (e *Element) Find(match func(*Element) bool) []*Element {
	var found []*Element
	var visit func(*Element)
	visit = func(el *Element) {
		if match(el) {
			found = append(found, el)
		}
		for _, child := range el.Children {
			visit(child)
		}
	}
	visit(e)
	return found
}
