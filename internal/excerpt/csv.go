// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package excerpt

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// Columns is the stable column order of the excerpts CSV.
var Columns = []string{
	"source", "tibschol_refs", "zotero_refs",
	"xml_id", "status", "location", "xml_content",
}

// WriteCSV writes the excerpt table to path, creating parent directories.
// The file is written to a temp file first and renamed into place so a
// failed run never leaves a truncated artifact.
func WriteCSV(records []types.Excerpt, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".excerpts-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Source, rec.TibScholRefs, rec.ZoteroRefs,
			rec.XMLID, rec.Status, rec.Location, rec.XMLContent,
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row for %s: %w", rec.XMLID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ReadCSV reads an excerpt table written by WriteCSV. Columns are matched
// by header name, so readers tolerate reordered or extended tables.
func ReadCSV(path string) ([]types.Excerpt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range Columns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	field := func(row []string, name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.Excerpt
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for _, row := range rows {
		records = append(records, types.Excerpt{
			Source:       field(row, "source"),
			TibScholRefs: field(row, "tibschol_refs"),
			ZoteroRefs:   field(row, "zotero_refs"),
			XMLID:        field(row, "xml_id"),
			Status:       field(row, "status"),
			Location:     field(row, "location"),
			XMLContent:   field(row, "xml_content"),
		})
	}
	return records, nil
}
