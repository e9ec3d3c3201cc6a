// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/gitops"
	"github.com/tibschol/excerpt-engine/internal/secrets"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

const (
	defaultAuthorName  = "github-actions[bot]"
	defaultAuthorEmail = "41898282+github-actions[bot]@users.noreply.github.com"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit and push the excerpts CSV when it changed",
	Long: `Commit stages the excerpts CSV and checks the staged diff. When
nothing changed it prints "No changes to commit." and exits successfully.
Otherwise it creates one commit with a timestamped message and pushes it.

The push token is taken from --token, the GITHUB_TOKEN environment
variable, or .secrets/github-token.`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().String("csv", defaultCSV, "artifact to stage and commit")
	commitCmd.Flags().String("repo-dir", ".", "repository worktree to commit in")
	commitCmd.Flags().String("remote", "origin", "git remote to push to")
	commitCmd.Flags().String("branch", "", "branch to push to (default: current branch)")
	commitCmd.Flags().String("author-name", defaultAuthorName, "commit author name")
	commitCmd.Flags().String("author-email", defaultAuthorEmail, "commit author email")
	commitCmd.Flags().String("token", "", "push token")

	rootCmd.AddCommand(commitCmd)
}

func commitConfigFromFlags(cmd *cobra.Command) types.CommitConfig {
	token, _ := cmd.Flags().GetString("token")
	branch, _ := cmd.Flags().GetString("branch")

	return types.CommitConfig{
		Dir:         flagOrConfig(cmd, "repo-dir", "commit.dir"),
		CSVPath:     flagOrConfig(cmd, "csv", "commit.csv_path"),
		Remote:      flagOrConfig(cmd, "remote", "commit.remote"),
		Branch:      branch,
		AuthorName:  flagOrConfig(cmd, "author-name", "commit.author_name"),
		AuthorEmail: flagOrConfig(cmd, "author-email", "commit.author_email"),
		Token:       resolveToken(token, "GITHUB_TOKEN", secrets.KeyGitHubToken),
	}
}

func runCommit(cmd *cobra.Command, args []string) error {
	cfg := commitConfigFromFlags(cmd)
	_, err := gitops.CommitIfChanged(cmd.Context(), cfg, time.Now(), os.Stdout)
	return err
}
