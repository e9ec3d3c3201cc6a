// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tibschol/excerpt-engine/internal/archive"
	"github.com/tibschol/excerpt-engine/internal/gitops"
	"github.com/tibschol/excerpt-engine/internal/secrets"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

const (
	defaultBranch    = "main"
	defaultSyncDir   = "TEI-curation"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "excerpt-engine/0.1"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Check out or update the TEI-curation companion repository",
	Long: `Sync brings a local copy of the companion transcription repository up
to date. The git transport performs a shallow clone or fetch+reset; the
archive transport downloads a tarball through the GitHub API and unpacks
only the XML payload.

The access token is taken from --token, the PERSONAL_ACCESS_TOKEN
environment variable, or .secrets/personal-access-token.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("repo", "", "companion repository (clone URL, or owner/name for --via archive)")
	syncCmd.Flags().String("branch", defaultBranch, "branch to check out")
	syncCmd.Flags().String("dir", defaultSyncDir, "local checkout directory")
	syncCmd.Flags().String("via", string(types.TransportGit), "transport: git or archive")
	syncCmd.Flags().String("token", "", "access token for the companion repository")
	syncCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout (archive transport)")

	rootCmd.AddCommand(syncCmd)
}

func syncConfigFromFlags(cmd *cobra.Command) types.SyncConfig {
	token, _ := cmd.Flags().GetString("token")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return types.SyncConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		RepoURL:   flagOrConfig(cmd, "repo", "sync.repo_url"),
		Branch:    flagOrConfig(cmd, "branch", "sync.branch"),
		Dir:       flagOrConfig(cmd, "dir", "sync.dir"),
		Transport: types.SyncTransport(flagOrConfig(cmd, "via", "sync.transport")),
		Token:     resolveToken(token, "PERSONAL_ACCESS_TOKEN", secrets.KeyPersonalAccessToken),
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := syncConfigFromFlags(cmd)
	if cfg.RepoURL == "" {
		return fmt.Errorf("no companion repository configured: set --repo or sync.repo_url")
	}

	switch cfg.Transport {
	case types.TransportGit, "":
		return gitops.Sync(cmd.Context(), cfg, os.Stdout)
	case types.TransportArchive:
		client := &http.Client{Timeout: cfg.Timeout}
		return archive.Fetch(cmd.Context(), client, cfg, os.Stdout)
	default:
		return fmt.Errorf("unsupported transport %q: use git or archive", cfg.Transport)
	}
}
