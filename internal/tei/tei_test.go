// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<TEI xmlns="http://www.tei-c.org/ns/1.0">
<teiHeader>
  <fileDesc>
    <sourceDesc>
      <msDesc>
        <msIdentifier>
          <idno type="TibSchol">ms-0042</idno>
          <idno type="TibSchol">ms-0042</idno>
          <idno type="TibSchol">ms-0099</idno>
          <idno type="Zotero">ABCD1234</idno>
        </msIdentifier>
      </msDesc>
    </sourceDesc>
  </fileDesc>
</teiHeader>
<text><body>
  <p><seg type="excerpt" xml:id="ex-one" status="reviewed"><lb n="1a1"/>first</seg></p>
  <p><seg type="quote">not an excerpt</seg></p>
  <p><seg type="excerpt" xml:id="ex-two"><lb n="2b3"/>second</seg></p>
</body></text>
</TEI>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc), "dir/sample.xml")
	require.NoError(t, err)
	assert.Equal(t, "sample.xml", doc.Source())
	assert.Equal(t, "TEI", doc.Root().Tag)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader("<TEI><unclosed>"), "bad.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.xml")
}

func TestIdnos_DedupedInDocumentOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc), "sample.xml")
	require.NoError(t, err)

	assert.Equal(t, []string{"ms-0042", "ms-0099"}, doc.Idnos(IdnoTibSchol))
	assert.Equal(t, []string{"ABCD1234"}, doc.Idnos(IdnoZotero))
	assert.Empty(t, doc.Idnos("BDRC"))
}

func TestExcerptSegs(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc), "sample.xml")
	require.NoError(t, err)

	segs := doc.ExcerptSegs()
	require.Len(t, segs, 2)
	assert.Equal(t, "ex-one", XMLID(segs[0]))
	assert.Equal(t, "ex-two", XMLID(segs[1]))
	assert.Equal(t, "reviewed", segs[0].SelectAttrValue("status", ""))
}

func TestMinify(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc), "sample.xml")
	require.NoError(t, err)

	segs := doc.ExcerptSegs()
	require.NotEmpty(t, segs)

	s, err := Minify(segs[0])
	require.NoError(t, err)
	assert.Contains(t, s, `xml:id="ex-one"`)
	assert.Contains(t, s, "first")
	assert.False(t, strings.HasPrefix(s, "\n"), "minified fragment must not carry leading whitespace")
	assert.False(t, strings.HasSuffix(s, "\n"), "minified fragment must not carry trailing whitespace")
}

func TestEnvelope(t *testing.T) {
	got := Envelope(`<lb n="1a1"/>`, `<seg>x</seg>`)
	assert.Equal(t,
		`<TEI xmlns='http://www.tei-c.org/ns/1.0'><lb n="1a1"/><seg>x</seg></TEI>`,
		got)
}

func TestPlainText(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<TEI xmlns="http://www.tei-c.org/ns/1.0">
	<seg type="excerpt" xml:id="p1"><lb n="1a1"/>na mo
	<lb n="1a2"/>  g+hu   ru <note>gloss</note>|</seg>
	</TEI>`), "t.xml")
	require.NoError(t, err)

	segs := doc.ExcerptSegs()
	require.NotEmpty(t, segs)
	// The note's text and the following pipe have no whitespace between
	// their character-data nodes, so they join without a space.
	assert.Equal(t, "na mo g+hu ru gloss|", PlainText(segs[0]))
}
