// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/excerpt"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

const (
	defaultGlob = "TEI-curation/010_manannot/*.xml"
	defaultCSV  = "data/excerpts.csv"
)

var extractCmd = &cobra.Command{
	Use:   "extract [glob]",
	Short: "Extract excerpt segments from TEI XML files into the CSV",
	Long: `Extract parses every TEI transcription matching the glob pattern,
collects seg elements annotated as excerpts together with their folio-line
locations and document identifiers, and writes the excerpt table.

Files that fail to parse are reported and skipped; the run continues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("glob", defaultGlob, "glob pattern for TEI XML files")
	extractCmd.Flags().String("output", defaultCSV, "path of the excerpts CSV")

	rootCmd.AddCommand(extractCmd)
}

func extractConfigFromFlags(cmd *cobra.Command, args []string) types.ExtractConfig {
	glob := flagOrConfig(cmd, "glob", "extract.glob")
	if len(args) > 0 {
		glob = args[0]
	}
	return types.ExtractConfig{
		Glob:      glob,
		OutputCSV: flagOrConfig(cmd, "output", "extract.output_csv"),
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractConfigFromFlags(cmd, args)
	return extractToCSV(cfg)
}

func extractToCSV(cfg types.ExtractConfig) error {
	records, _, err := excerpt.ExtractGlob(cfg.Glob, os.Stdout)
	if err != nil {
		return err
	}
	if err := excerpt.WriteCSV(records, cfg.OutputCSV); err != nil {
		return err
	}
	fmt.Printf("Excerpts written to %s.\n", cfg.OutputCSV)
	return nil
}
