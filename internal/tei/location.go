// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"strings"

	"github.com/beevik/etree"
)

// Elements that may sit before the first lb without counting as content
// themselves: page beginnings, editorial notes, and structural milestones.
// Any character data they carry still counts.
func isTransparent(tag string) bool {
	return tag == "pb" || tag == "note" || tag == "milestone"
}

// LineContext describes how an excerpt seg sits in the line structure of
// its transcription.
type LineContext struct {
	// Start is the lb milestone the excerpt starts at. Nil when the
	// transcription has no lb inside or before the seg.
	Start *etree.Element

	// Preceding reports that Start was found before the seg in document
	// order, i.e. the excerpt begins mid-line.
	Preceding bool
}

// LineContextOf finds the starting lb for a seg. A seg "starts at" its
// first child lb when no textual content precedes that lb; otherwise it
// starts mid-line and the nearest lb preceding the seg applies.
func LineContextOf(seg *etree.Element) LineContext {
	if lb := firstLBBeforeContent(seg); lb != nil {
		return LineContext{Start: lb}
	}
	if lb := precedingLB(seg); lb != nil {
		return LineContext{Start: lb, Preceding: true}
	}
	return LineContext{}
}

// Location renders the folio-line span of a seg. Lines are grouped by the
// lb edRef attribute (the witness siglum) in first-seen order; each group
// renders as "first" or "first - last", groups joined by "; ".
func Location(seg *etree.Element) string {
	ctx := LineContextOf(seg)

	var lbs []*etree.Element
	if ctx.Start != nil && ctx.Preceding {
		lbs = append(lbs, ctx.Start)
	}
	lbs = append(lbs, internalLBs(seg)...)

	type span struct{ first, last string }
	var (
		order []string
		spans = map[string]*span{}
	)
	for _, lb := range lbs {
		n := lb.SelectAttrValue("n", "")
		if n == "" {
			continue
		}
		ed := lb.SelectAttrValue("edRef", "")
		s, ok := spans[ed]
		if !ok {
			s = &span{first: n}
			spans[ed] = s
			order = append(order, ed)
		}
		s.last = n
	}

	parts := make([]string, 0, len(order))
	for _, ed := range order {
		s := spans[ed]
		if s.first == s.last {
			parts = append(parts, s.first)
		} else {
			parts = append(parts, s.first+" - "+s.last)
		}
	}
	return strings.Join(parts, "; ")
}

// firstLBBeforeContent returns the seg's first child lb if nothing but
// transparent elements, comments, and whitespace sit before it. Returns
// nil when the seg begins with textual content or another element.
func firstLBBeforeContent(seg *etree.Element) *etree.Element {
	if textBeforeFirstLB(seg) != "" {
		return nil
	}
	for _, child := range seg.ChildElements() {
		switch {
		case isTransparent(child.Tag):
			continue
		case child.Tag == "lb":
			return child
		default:
			return nil
		}
	}
	return nil
}

// textBeforeFirstLB collects all character data inside seg, in document
// order, up to the first lb descendant, and returns it trimmed.
func textBeforeFirstLB(seg *etree.Element) string {
	var b strings.Builder
	collectUntilLB(seg, &b)
	return strings.TrimSpace(b.String())
}

// collectUntilLB walks el's children in order, appending character data to
// b. It reports true once an lb element is reached, stopping the walk.
func collectUntilLB(el *etree.Element, b *strings.Builder) bool {
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.CharData:
			b.WriteString(node.Data)
		case *etree.Element:
			if node.Tag == "lb" {
				return true
			}
			if collectUntilLB(node, b) {
				return true
			}
		}
	}
	return false
}

// precedingLB returns the nearest lb before seg in document order, or nil.
// Descendants of seg come after it in preorder, so they are never picked.
func precedingLB(seg *etree.Element) *etree.Element {
	var (
		last  *etree.Element
		found *etree.Element
	)
	walk(top(seg), func(el *etree.Element) {
		if found != nil {
			return
		}
		if el == seg {
			found = last
			return
		}
		if el.Tag == "lb" {
			last = el
		}
	})
	return found
}

// internalLBs returns all lb descendants of seg in document order.
func internalLBs(seg *etree.Element) []*etree.Element {
	var lbs []*etree.Element
	for _, child := range seg.ChildElements() {
		walk(child, func(el *etree.Element) {
			if el.Tag == "lb" {
				lbs = append(lbs, el)
			}
		})
	}
	return lbs
}
