// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Minify serializes an element as a single XML fragment with no added
// indentation and without its tail text.
func Minify(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing %s: %w", el.Tag, err)
	}
	return strings.TrimSpace(s), nil
}

// Envelope wraps serialized fragments in a TEI root carrying the namespace
// declaration, so the minified excerpt stays well-formed on its own.
func Envelope(fragments ...string) string {
	var b strings.Builder
	b.WriteString("<TEI xmlns='")
	b.WriteString(Namespace)
	b.WriteString("'>")
	for _, f := range fragments {
		b.WriteString(f)
	}
	b.WriteString("</TEI>")
	return b.String()
}

// PlainText returns the character data of el and its descendants in
// document order, with runs of whitespace collapsed to single spaces.
func PlainText(el *etree.Element) string {
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, child := range e.Child {
			switch node := child.(type) {
			case *etree.CharData:
				b.WriteString(node.Data)
			case *etree.Element:
				collect(node)
			}
		}
	}
	collect(el)
	return strings.Join(strings.Fields(b.String()), " ")
}
