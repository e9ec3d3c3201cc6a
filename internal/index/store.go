// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists extracted excerpts in a SQLite database and
// builds a full-text retrieval index over their plain text.
package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tibschol/excerpt-engine/internal/excerpt"
	"github.com/tibschol/excerpt-engine/internal/tei"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "excerpts.db"
)

// Store manages the excerpt index SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the excerpt index database at
// dataDir/index/excerpts.db, creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			filename TEXT PRIMARY KEY,
			tibschol_refs TEXT,
			zotero_refs TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS excerpts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			xml_id TEXT NOT NULL UNIQUE,
			status TEXT,
			location TEXT,
			source_file TEXT NOT NULL REFERENCES sources(filename),
			xml_content TEXT NOT NULL,
			text_content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_excerpts_source ON excerpts(source_file)`,
		`CREATE INDEX IF NOT EXISTS idx_excerpts_status ON excerpts(status)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_file TEXT PRIMARY KEY,
			checksum TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='excerpts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE excerpts_fts USING fts5(text_content, content=excerpts, content_rowid=rowid)`,
			`CREATE TRIGGER excerpts_ai AFTER INSERT ON excerpts BEGIN
				INSERT INTO excerpts_fts(rowid, text_content) VALUES (new.rowid, new.text_content);
			END`,
			`CREATE TRIGGER excerpts_ad AFTER DELETE ON excerpts BEGIN
				INSERT INTO excerpts_fts(excerpts_fts, rowid, text_content) VALUES('delete', old.rowid, old.text_content);
			END`,
			`CREATE TRIGGER excerpts_au AFTER UPDATE ON excerpts BEGIN
				INSERT INTO excerpts_fts(excerpts_fts, rowid, text_content) VALUES('delete', old.rowid, old.text_content);
				INSERT INTO excerpts_fts(rowid, text_content) VALUES (new.rowid, new.text_content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index ingestion run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of source files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads the excerpts CSV and populates the database. Sources whose
// rows are unchanged since the last run are skipped; changed sources are
// replaced transactionally; sources no longer present in the CSV are
// removed.
func (s *Store) Ingest(ctx context.Context, csvPath string, w io.Writer) (IngestSummary, error) {
	records, err := excerpt.ReadCSV(csvPath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading %s: %w", csvPath, err)
	}

	var (
		order   []string
		grouped = map[string][]types.Excerpt{}
	)
	for _, rec := range records {
		if _, ok := grouped[rec.Source]; !ok {
			order = append(order, rec.Source)
		}
		grouped[rec.Source] = append(grouped[rec.Source], rec)
	}

	var summary IngestSummary

	for _, source := range order {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rows := grouped[source]
		sum := checksum(rows)

		var stored string
		err := s.db.QueryRowContext(ctx,
			`SELECT checksum FROM indexing_status WHERE source_file = ?`, source,
		).Scan(&stored)

		if err == nil && stored == sum {
			fmt.Fprintf(w, "skipped %s\n", source)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		if err := s.ingestSource(ctx, source, rows, sum, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d excerpts)\n", source, len(rows))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d excerpts)\n", source, len(rows))
			summary.Indexed++
		}
	}

	removed, err := s.removeVanished(ctx, grouped)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)

	return summary, nil
}

func (s *Store) ingestSource(ctx context.Context, source string, rows []types.Excerpt, sum string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM excerpts WHERE source_file = ?`, source); err != nil {
			return fmt.Errorf("deleting old excerpts: %w", err)
		}
	}

	first := rows[0]
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (filename, tibschol_refs, zotero_refs)
		 VALUES (?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET
			tibschol_refs=excluded.tibschol_refs, zotero_refs=excluded.zotero_refs`,
		source, first.TibScholRefs, first.ZoteroRefs,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO excerpts (xml_id, status, location, source_file, xml_content, text_content)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range rows {
		_, err := stmt.ExecContext(ctx,
			rec.XMLID, rec.Status, rec.Location, rec.Source,
			rec.XMLContent, plainText(rec.XMLContent),
		)
		if err != nil {
			return fmt.Errorf("inserting excerpt %s: %w", rec.XMLID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_file, checksum) VALUES (?, ?)
		 ON CONFLICT(source_file) DO UPDATE SET checksum=excluded.checksum`,
		source, sum,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// removeVanished drops index rows for sources absent from the current CSV.
func (s *Store) removeVanished(ctx context.Context, current map[string][]types.Excerpt) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_file FROM indexing_status`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed sources: %w", err)
	}
	var vanished []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning source: %w", err)
		}
		if _, ok := current[source]; !ok {
			vanished = append(vanished, source)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, source := range vanished {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		for _, stmt := range []string{
			`DELETE FROM excerpts WHERE source_file = ?`,
			`DELETE FROM indexing_status WHERE source_file = ?`,
			`DELETE FROM sources WHERE filename = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, source); err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("removing %s: %w", source, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("removing %s: %w", source, err)
		}
	}
	return len(vanished), nil
}

// checksum fingerprints a source's rows for change detection.
func checksum(rows []types.Excerpt) string {
	h := sha256.New()
	for _, rec := range rows {
		for _, field := range []string{
			rec.TibScholRefs, rec.ZoteroRefs,
			rec.XMLID, rec.Status, rec.Location, rec.XMLContent,
		} {
			h.Write([]byte(field))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// plainText recovers searchable text from a serialized excerpt. Content
// that fails to parse indexes as an empty string rather than failing the
// source.
func plainText(xmlContent string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlContent); err != nil || doc.Root() == nil {
		return ""
	}
	return tei.PlainText(doc.Root())
}
