// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/index"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the excerpt search index (store, retrieve, export)",
	Long: `Index manages a local SQLite search index built from the excerpts
CSV. Use subcommands to ingest the CSV, query the corpus, or export.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the excerpts CSV into the search index",
	Long: `Store reads the excerpts CSV, ingests it into a SQLite database with
FTS5 indexing over the excerpts' plain text, and removes index entries for
transcriptions no longer present. Unchanged sources are skipped on
subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	cfg := indexConfig(cmd)
	csvPath, _ := cmd.Flags().GetString("csv")

	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), csvPath, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the excerpt index with full-text search and filters",
	Long: `Retrieve searches the excerpt corpus using FTS5 full-text search,
structured filters (status, source, location), or a combination of both.
Results include the source transcription and folio-line location.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	cfg := indexConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --status, --source, or --location")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-16s  %-26s  %s\n",
		"Rank", "Status", "Location", "Source", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		text := r.Text
		if len(text) > 48 {
			text = text[:45] + "..."
		}
		location := r.Location
		if len(location) > 16 {
			location = location[:13] + "..."
		}
		source := r.Source
		if len(source) > 26 {
			source = source[:23] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-16s  %-26s  %s\n",
			i+1, r.Status, location, source, text)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the excerpt index to YAML or JSON",
	Long: `Export writes the full excerpt index (or a filtered subset) to
data/index/export.yaml or export.json. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := indexConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", cfg.DataDir)
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", cfg.DataDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		DataDir:    dataDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	status, _ := cmd.Flags().GetString("status")
	source, _ := cmd.Flags().GetString("source")
	location, _ := cmd.Flags().GetString("location")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Status:     status,
		Source:     source,
		Location:   location,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("data-dir", "data", "base data directory (contains excerpts.csv and index/)")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Store flags.
	indexStoreCmd.Flags().String("csv", defaultCSV, "excerpts CSV to ingest")

	// Retrieve flags.
	indexRetrieveCmd.Flags().String("query", "", "full-text search query")
	indexRetrieveCmd.Flags().String("status", "", "filter by excerpt status (e.g. reviewed)")
	indexRetrieveCmd.Flags().String("source", "", "filter by source transcription filename")
	indexRetrieveCmd.Flags().String("location", "", "filter by folio-line location substring")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("status", "", "filter by excerpt status for partial export")
	indexExportCmd.Flags().String("source", "", "filter by source filename for partial export")
	indexExportCmd.Flags().String("location", "", "filter by location substring for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum excerpts to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
