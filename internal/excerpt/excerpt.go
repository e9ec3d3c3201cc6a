// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package excerpt extracts annotated excerpt records from TEI
// transcriptions and maintains the excerpts CSV artifact.
package excerpt

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tibschol/excerpt-engine/internal/tei"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

// BatchResult holds the outcome of an extraction run.
type BatchResult struct {
	Processed int
	Failed    int
	Excerpts  int
}

// Total returns the number of files handled.
func (r BatchResult) Total() int {
	return r.Processed + r.Failed
}

// HasFailures reports whether any files failed to parse.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FromDocument builds one record per excerpt seg in doc. Document-level
// identifiers are shared across all records of the document.
func FromDocument(doc *tei.Document) ([]types.Excerpt, error) {
	tibschol := strings.Join(doc.Idnos(tei.IdnoTibSchol), "\n")
	zotero := strings.Join(doc.Idnos(tei.IdnoZotero), "\n")

	var records []types.Excerpt
	for _, seg := range doc.ExcerptSegs() {
		ctx := tei.LineContextOf(seg)

		// A seg starting mid-line carries its opening lb along, so the
		// excerpt keeps the line milestone it continues from.
		var lbText string
		if ctx.Preceding {
			s, err := tei.Minify(ctx.Start)
			if err != nil {
				return nil, err
			}
			lbText = s
		}

		segXML, err := tei.Minify(seg)
		if err != nil {
			return nil, err
		}

		records = append(records, types.Excerpt{
			Source:       doc.Source(),
			TibScholRefs: tibschol,
			ZoteroRefs:   zotero,
			XMLID:        tei.XMLID(seg),
			Status:       seg.SelectAttrValue("status", ""),
			Location:     tei.Location(seg),
			XMLContent:   tei.Envelope(lbText, segXML),
		})
	}
	return records, nil
}

// ExtractFiles parses each path and collects excerpt records, printing
// per-file status to w. A file that fails to parse is reported and skipped;
// the batch continues.
func ExtractFiles(paths []string, w io.Writer) ([]types.Excerpt, BatchResult) {
	var (
		all    []types.Excerpt
		result BatchResult
	)
	for _, path := range paths {
		doc, err := tei.ParseFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			result.Failed++
			continue
		}

		records, err := FromDocument(doc)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.Source(), err)
			result.Failed++
			continue
		}

		for _, rec := range records {
			if rec.Location == "" {
				fmt.Fprintf(w, "  warning: no location for %s in %s\n", rec.XMLID, rec.Source)
			}
		}

		fmt.Fprintf(w, "extracted: %s (%d excerpts)\n", doc.Source(), len(records))
		result.Processed++
		result.Excerpts += len(records)
		all = append(all, records...)
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d failed, %d excerpts (files: %d)\n",
		result.Processed, result.Failed, result.Excerpts, result.Total())
	return all, result
}

// ExtractGlob expands pattern and extracts excerpts from every matching
// file in sorted order.
func ExtractGlob(pattern string, w io.Writer) ([]types.Excerpt, BatchResult, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, BatchResult{}, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		fmt.Fprintf(w, "no files match %s\n", pattern)
	}
	sort.Strings(paths)

	records, result := ExtractFiles(paths, w)
	return records, result, nil
}
