// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseSeg parses a TEI fragment and returns its first excerpt seg.
func parseSeg(t *testing.T, doc string) *etree.Element {
	t.Helper()
	d, err := Parse(strings.NewReader(doc), "test.xml")
	require.NoError(t, err)
	segs := d.ExcerptSegs()
	require.NotEmpty(t, segs, "no excerpt seg in fragment")
	return segs[0]
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "range within seg",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<seg type="excerpt" xml:id="ex1" status="reviewed"><lb n="1a1"/>na mo g+hu ru |
			<lb n="1a2"/> kyi chos kun rdzob du bden pas
			<lb n="1a3"/> dus su sbyor dngos rjes |</seg>
			</TEI>`,
			want: "1a1 - 1a3",
		},
		{
			name: "preceding lb used when seg starts with text",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="10"/>
			<seg type="excerpt" xml:id="s1">This starts text <lb n="11"/> more text</seg>
			</TEI>`,
			want: "10 - 11",
		},
		{
			name: "milestone does not count as content before lb",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="20"/>
			<seg type="excerpt" xml:id="s2"><milestone unit="section" n="X"/><lb n="21"/>content</seg>
			</TEI>`,
			want: "21",
		},
		{
			name: "empty page beginning does not count as content",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="30"/>
			<seg type="excerpt" xml:id="s2b"><pb n="2a"/><lb n="31"/>content</seg>
			</TEI>`,
			want: "31",
		},
		{
			name: "text inside a note counts as content",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="30"/>
			<seg type="excerpt" xml:id="s2c"><note>marginal</note><lb n="31"/>content</seg>
			</TEI>`,
			want: "30 - 31",
		},
		{
			name: "no lbs returns empty",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<seg type="excerpt" xml:id="s3">no line breaks here</seg>
			</TEI>`,
			want: "",
		},
		{
			name: "single lb returns single n",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<seg type="excerpt" xml:id="s5"><lb n="5"/></seg>
			</TEI>`,
			want: "5",
		},
		{
			name: "ranges grouped by edRef with preceding lb",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="1b4" edRef="inst:5591"/>
			<seg type="excerpt" xml:id="s4">prefix text <lb n="1b1" edRef="inst:5591"/> <lb n="1b2" edRef="inst:5591"/> <lb n="2a1" edRef="inst:OTHER"/> <lb n="2a2" edRef="inst:OTHER"/></seg>
			</TEI>`,
			want: "1b4 - 1b2; 2a1 - 2a2",
		},
		{
			name: "other element before lb falls back to preceding",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<lb n="40"/>
			<seg type="excerpt" xml:id="s6"><rs type="person">name</rs><lb n="41"/>text</seg>
			</TEI>`,
			want: "40 - 41",
		},
		{
			name: "lb without n attribute is ignored",
			doc: `<TEI xmlns="http://www.tei-c.org/ns/1.0">
			<seg type="excerpt" xml:id="s7"><lb/>text <lb n="3a2"/> more</seg>
			</TEI>`,
			want: "3a2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := parseSeg(t, tt.doc)
			assert.Equal(t, tt.want, Location(seg))
		})
	}
}

func TestLineContextOf(t *testing.T) {
	t.Run("internal start", func(t *testing.T) {
		seg := parseSeg(t, `<TEI xmlns="http://www.tei-c.org/ns/1.0">
		<seg type="excerpt" xml:id="a"><lb n="1a1"/>text</seg>
		</TEI>`)
		ctx := LineContextOf(seg)
		require.NotNil(t, ctx.Start)
		assert.False(t, ctx.Preceding)
		assert.Equal(t, "1a1", ctx.Start.SelectAttrValue("n", ""))
	})

	t.Run("preceding start", func(t *testing.T) {
		seg := parseSeg(t, `<TEI xmlns="http://www.tei-c.org/ns/1.0">
		<lb n="9"/>
		<seg type="excerpt" xml:id="b">starts mid-line <lb n="10"/></seg>
		</TEI>`)
		ctx := LineContextOf(seg)
		require.NotNil(t, ctx.Start)
		assert.True(t, ctx.Preceding)
		assert.Equal(t, "9", ctx.Start.SelectAttrValue("n", ""))
	})

	t.Run("no lb anywhere", func(t *testing.T) {
		seg := parseSeg(t, `<TEI xmlns="http://www.tei-c.org/ns/1.0">
		<seg type="excerpt" xml:id="c">plain</seg>
		</TEI>`)
		ctx := LineContextOf(seg)
		assert.Nil(t, ctx.Start)
	})

	t.Run("lb inside nested element does not precede from within", func(t *testing.T) {
		// The nearest preceding lb may live inside an earlier sibling.
		seg := parseSeg(t, `<TEI xmlns="http://www.tei-c.org/ns/1.0">
		<p><lb n="4b3"/>earlier paragraph</p>
		<seg type="excerpt" xml:id="d">mid-line text</seg>
		</TEI>`)
		ctx := LineContextOf(seg)
		require.NotNil(t, ctx.Start)
		assert.True(t, ctx.Preceding)
		assert.Equal(t, "4b3", ctx.Start.SelectAttrValue("n", ""))
	})
}
