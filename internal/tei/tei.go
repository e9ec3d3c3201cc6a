// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tei reads TEI (Text Encoding Initiative) XML transcriptions and
// locates annotated excerpt segments within them.
//
// The package works on the element tree produced by beevik/etree and matches
// elements by local name, so documents using the default TEI namespace and
// documents using an explicit prefix are handled the same way.
package tei

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/beevik/etree"
)

// Namespace is the TEI namespace URI.
const Namespace = "http://www.tei-c.org/ns/1.0"

// Identifier types carried in the teiHeader of curated transcriptions.
const (
	IdnoTibSchol = "TibSchol"
	IdnoZotero   = "Zotero"
)

// Document is a parsed TEI transcription.
type Document struct {
	doc  *etree.Document
	path string
}

// ParseFile reads and parses a TEI XML file.
func ParseFile(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Document{doc: doc, path: path}, nil
}

// Parse reads a TEI document from r. The path is only used for Source().
func Parse(r io.Reader, path string) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Document{doc: doc, path: path}, nil
}

// Source returns the base filename of the parsed document.
func (d *Document) Source() string {
	return filepath.Base(d.path)
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Idnos returns the text of every idno element with the given type
// attribute, in document order with duplicates removed.
func (d *Document) Idnos(idnoType string) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	walk(d.doc.Root(), func(el *etree.Element) {
		if el.Tag != "idno" || el.SelectAttrValue("type", "") != idnoType {
			return
		}
		text := el.Text()
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, text)
	})
	return out
}

// ExcerptSegs returns every seg element with type="excerpt", in document order.
func (d *Document) ExcerptSegs() []*etree.Element {
	var segs []*etree.Element
	walk(d.doc.Root(), func(el *etree.Element) {
		if el.Tag == "seg" && el.SelectAttrValue("type", "") == "excerpt" {
			segs = append(segs, el)
		}
	})
	return segs
}

// XMLID returns an element's xml:id attribute, or "".
func XMLID(el *etree.Element) string {
	return el.SelectAttrValue("xml:id", "")
}

// walk visits el and all its descendant elements in document order.
func walk(el *etree.Element, visit func(*etree.Element)) {
	if el == nil {
		return
	}
	visit(el)
	for _, child := range el.ChildElements() {
		walk(child, visit)
	}
}

// top climbs to the outermost element containing el. For elements attached
// to a document this is the element holding the document root.
func top(el *etree.Element) *etree.Element {
	for el.Parent() != nil {
		el = el.Parent()
	}
	return el
}
