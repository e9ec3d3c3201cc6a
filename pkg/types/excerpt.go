// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Excerpt is one annotated excerpt extracted from a TEI transcription,
// one row of data/excerpts.csv.
type Excerpt struct {
	// Source is the base filename of the TEI document the excerpt came from.
	Source string `json:"source" yaml:"source"`

	// TibScholRefs holds the document-level idno[@type="TibSchol"] values,
	// deduplicated and newline-joined.
	TibScholRefs string `json:"tibschol_refs" yaml:"tibschol_refs"`

	// ZoteroRefs holds the document-level idno[@type="Zotero"] values,
	// deduplicated and newline-joined.
	ZoteroRefs string `json:"zotero_refs" yaml:"zotero_refs"`

	// XMLID is the seg's xml:id attribute.
	XMLID string `json:"xml_id" yaml:"xml_id"`

	// Status is the seg's status attribute (e.g. "reviewed"). Free-form,
	// controlled by the annotation guidelines rather than this tool.
	Status string `json:"status" yaml:"status"`

	// Location describes the folio lines the excerpt spans, per witness
	// (e.g. "1a1 - 1a3" or "1b4 - 1b2; 2a1 - 2a2"). Empty when the
	// transcription carries no line-beginning milestones near the seg.
	Location string `json:"location" yaml:"location"`

	// XMLContent is the seg serialized minified inside a TEI envelope,
	// prefixed with the preceding lb when the seg starts mid-line.
	XMLContent string `json:"xml_content" yaml:"xml_content"`
}
