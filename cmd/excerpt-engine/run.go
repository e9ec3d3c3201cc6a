// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/archive"
	"github.com/tibschol/excerpt-engine/internal/excerpt"
	"github.com/tibschol/excerpt-engine/internal/gitops"
	"github.com/tibschol/excerpt-engine/internal/secrets"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: sync, extract, commit",
	Long: `Run chains the pipeline stages in order: update the companion
repository, extract excerpts into the CSV, then commit and push the CSV
when it changed. The first failed stage aborts the run.`,
	RunE: runPipelineCmd,
}

func init() {
	runCmd.Flags().String("repo", "", "companion repository (clone URL, or owner/name for --via archive)")
	runCmd.Flags().String("branch", defaultBranch, "companion branch to check out")
	runCmd.Flags().String("dir", defaultSyncDir, "local checkout directory")
	runCmd.Flags().String("via", string(types.TransportGit), "sync transport: git or archive")
	runCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout (archive transport)")
	runCmd.Flags().String("glob", defaultGlob, "glob pattern for TEI XML files")
	runCmd.Flags().String("output", defaultCSV, "path of the excerpts CSV")
	runCmd.Flags().String("repo-dir", ".", "repository worktree to commit in")
	runCmd.Flags().String("remote", "origin", "git remote to push to")
	runCmd.Flags().String("author-name", defaultAuthorName, "commit author name")
	runCmd.Flags().String("author-email", defaultAuthorEmail, "commit author email")
	runCmd.Flags().Bool("skip-sync", false, "skip the companion repository sync")
	runCmd.Flags().Bool("skip-commit", false, "extract only, do not commit or push")

	rootCmd.AddCommand(runCmd)
}

func pipelineConfigFromFlags(cmd *cobra.Command) types.PipelineConfig {
	return types.PipelineConfig{
		Sync: syncConfigFromFlags(cmd),
		Extract: types.ExtractConfig{
			Glob:      flagOrConfig(cmd, "glob", "extract.glob"),
			OutputCSV: flagOrConfig(cmd, "output", "extract.output_csv"),
		},
		Commit: types.CommitConfig{
			Dir:         flagOrConfig(cmd, "repo-dir", "commit.dir"),
			CSVPath:     flagOrConfig(cmd, "output", "commit.csv_path"),
			Remote:      flagOrConfig(cmd, "remote", "commit.remote"),
			AuthorName:  flagOrConfig(cmd, "author-name", "commit.author_name"),
			AuthorEmail: flagOrConfig(cmd, "author-email", "commit.author_email"),
			Token:       resolveToken("", "GITHUB_TOKEN", secrets.KeyGitHubToken),
		},
	}
}

func runPipelineCmd(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfigFromFlags(cmd)
	skipSync, _ := cmd.Flags().GetBool("skip-sync")
	skipCommit, _ := cmd.Flags().GetBool("skip-commit")

	return executePipeline(cmd.Context(), cfg, skipSync, skipCommit, cmd.OutOrStdout())
}

// executePipeline runs the stage sequence. Shared by run and schedule.
func executePipeline(ctx context.Context, cfg types.PipelineConfig, skipSync, skipCommit bool, w io.Writer) error {
	if !skipSync {
		if cfg.Sync.RepoURL == "" {
			return fmt.Errorf("no companion repository configured: set --repo or sync.repo_url")
		}
		var err error
		switch cfg.Sync.Transport {
		case types.TransportGit, "":
			err = gitops.Sync(ctx, cfg.Sync, w)
		case types.TransportArchive:
			client := &http.Client{Timeout: cfg.Sync.Timeout}
			err = archive.Fetch(ctx, client, cfg.Sync, w)
		default:
			err = fmt.Errorf("unsupported transport %q: use git or archive", cfg.Sync.Transport)
		}
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}

	records, _, err := excerpt.ExtractGlob(cfg.Extract.Glob, w)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := excerpt.WriteCSV(records, cfg.Extract.OutputCSV); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	fmt.Fprintf(w, "Excerpts written to %s.\n", cfg.Extract.OutputCSV)

	if !skipCommit {
		if _, err := gitops.CommitIfChanged(ctx, cfg.Commit, time.Now(), w); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}
