// Package ui builds escaped HTML from small typed components. Components take
// explicit config structs; free-form attributes are limited to data-* and
// aria-* keys and anything else is rejected with ErrUnknownProp.
package ui

import (
	"html"
	"sort"
	"strings"
)

// Node is anything that can write itself as HTML.
type Node interface {
	WriteHTML(b *strings.Builder)
}

// ToHTML renders nodes in order.
func ToHTML(nodes ...Node) string {
	var b strings.Builder
	for _, node := range nodes {
		if node != nil {
			node.WriteHTML(&b)
		}
	}
	return b.String()
}

// Text is escaped character data.
type Text string

func (t Text) WriteHTML(b *strings.Builder) {
	b.WriteString(html.EscapeString(string(t)))
}

// Raw is trusted markup written verbatim. Only use it for content produced
// by this package or sanitised elsewhere.
type Raw string

func (r Raw) WriteHTML(b *strings.Builder) {
	b.WriteString(string(r))
}

// Fragment groups nodes without a wrapping element.
type Fragment []Node

func (f Fragment) WriteHTML(b *strings.Builder) {
	for _, node := range f {
		if node != nil {
			node.WriteHTML(b)
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
}

// Attr is one attribute. A Bool attribute is written without a value and
// skipped when Value is empty.
type Attr struct {
	Key   string
	Value string
	Bool  bool
}

// Element is an HTML element with ordered attributes.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// El constructs an element.
func El(tag string, attrs []Attr, children ...Node) *Element {
	return &Element{Tag: tag, Attrs: attrs, Children: children}
}

// A is shorthand for a valued attribute.
func A(key, value string) Attr { return Attr{Key: key, Value: value} }

// Flag returns a boolean attribute that is present when on is true.
func Flag(key string, on bool) Attr {
	if !on {
		return Attr{Key: key, Bool: true}
	}
	return Attr{Key: key, Value: key, Bool: true}
}

// Append adds children and returns e.
func (e *Element) Append(children ...Node) *Element {
	e.Children = append(e.Children, children...)
	return e
}

func (e *Element) WriteHTML(b *strings.Builder) {
	if e == nil || e.Tag == "" {
		return
	}
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, attr := range e.Attrs {
		writeAttr(b, attr)
	}
	b.WriteByte('>')
	if voidElements[e.Tag] {
		return
	}
	for _, child := range e.Children {
		if child != nil {
			child.WriteHTML(b)
		}
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, attr Attr) {
	key := strings.TrimSpace(attr.Key)
	if key == "" {
		return
	}
	if attr.Bool {
		if attr.Value == "" {
			return
		}
		b.WriteByte(' ')
		b.WriteString(key)
		return
	}
	if attr.Value == "" && key != "value" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(attr.Value))
	b.WriteByte('"')
}

// sortedAttrs converts a map into attributes ordered by key.
func sortedAttrs(attrs map[string]string) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Attr, 0, len(keys))
	for _, key := range keys {
		out = append(out, A(key, attrs[key]))
	}
	return out
}
