// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// QueryOptions holds parameters for excerpt index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over excerpt text.
	Query string

	// Status filters by the seg status attribute (e.g. "reviewed").
	Status string

	// Source filters by source filename.
	Source string

	// Location filters by a substring of the folio-line location, which
	// doubles as a witness filter when given an edRef-specific line label.
	Location string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.Source == "" && q.Location == ""
}

// QueryResult is an excerpt with its searchable plain text.
type QueryResult struct {
	types.Excerpt
	Text string `json:"text" yaml:"text"`
}

// Retrieve queries the excerpt index with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by source and location otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT e.xml_id, e.status, e.location, e.source_file,
				e.xml_content, e.text_content,
				src.tibschol_refs, src.zotero_refs
			FROM excerpts_fts
			JOIN excerpts e ON e.rowid = excerpts_fts.rowid
			LEFT JOIN sources src ON e.source_file = src.filename
			WHERE excerpts_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT e.xml_id, e.status, e.location, e.source_file,
				e.xml_content, e.text_content,
				src.tibschol_refs, src.zotero_refs
			FROM excerpts e
			LEFT JOIN sources src ON e.source_file = src.filename
			WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND e.status = ?`)
		args = append(args, opts.Status)
	}

	if opts.Source != "" {
		qb.WriteString(` AND e.source_file = ?`)
		args = append(args, opts.Source)
	}

	if opts.Location != "" {
		qb.WriteString(` AND e.location LIKE '%' || ? || '%'`)
		args = append(args, opts.Location)
	}

	if useFTS {
		qb.WriteString(` ORDER BY excerpts_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY e.source_file, e.location, e.xml_id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying excerpt index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr       QueryResult
			status   sql.NullString
			location sql.NullString
			tibschol sql.NullString
			zotero   sql.NullString
		)

		if err := rows.Scan(
			&qr.XMLID, &status, &location, &qr.Source,
			&qr.XMLContent, &qr.Text,
			&tibschol, &zotero,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Status = status.String
		qr.Location = location.String
		qr.TibScholRefs = tibschol.String
		qr.ZoteroRefs = zotero.String

		results = append(results, qr)
	}

	return results, rows.Err()
}
