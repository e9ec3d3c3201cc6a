// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitops

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// Sync clones the companion repository into cfg.Dir at cfg.Branch, or
// brings an existing clone up to date with a shallow fetch and hard reset.
// The access token is passed on the command line per invocation and never
// written to the clone's git config.
func Sync(ctx context.Context, cfg types.SyncConfig, w io.Writer) error {
	return syncWith(ctx, defaultExec, cfg, w)
}

func syncWith(ctx context.Context, exec executor, cfg types.SyncConfig, w io.Writer) error {
	if _, err := exec.LookPath(binGit); err != nil {
		return fmt.Errorf("git binary not found: %w", err)
	}
	if cfg.RepoURL == "" {
		return fmt.Errorf("sync: repository URL not configured")
	}

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}

	fetchURL, err := authURL(cfg.RepoURL, cfg.Token)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if _, statErr := os.Stat(filepath.Join(cfg.Dir, ".git")); statErr == nil {
		fmt.Fprintf(w, "updating: %s (%s)\n", cfg.Dir, branch)
		if err := exec.Run(ctx, cfg.Dir, binGit, "fetch", "--depth", "1", fetchURL, branch); err != nil {
			return redacted(fmt.Errorf("fetching %s: %w", branch, err), cfg.Token)
		}
		if err := exec.Run(ctx, cfg.Dir, binGit, "reset", "--hard", "FETCH_HEAD"); err != nil {
			return redacted(fmt.Errorf("resetting to %s: %w", branch, err), cfg.Token)
		}
		return nil
	}

	fmt.Fprintf(w, "cloning: %s into %s (%s)\n", cfg.RepoURL, cfg.Dir, branch)
	err = exec.Run(ctx, "", binGit,
		"clone", "--depth", "1", "--branch", branch, fetchURL, cfg.Dir)
	if err != nil {
		return redacted(fmt.Errorf("cloning %s: %w", cfg.RepoURL, err), cfg.Token)
	}

	// The clone records the authenticated URL; put the plain one back so
	// the token never lives on disk.
	if cfg.Token != "" {
		if err := exec.Run(ctx, cfg.Dir, binGit, "remote", "set-url", "origin", cfg.RepoURL); err != nil {
			return redacted(fmt.Errorf("resetting remote URL: %w", err), cfg.Token)
		}
	}
	return nil
}

// authURL embeds a token into an https clone URL. Non-https URLs and empty
// tokens pass through unchanged.
func authURL(repoURL, token string) (string, error) {
	if token == "" || !strings.HasPrefix(repoURL, "https://") {
		return repoURL, nil
	}
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("bad repository URL: %w", err)
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String(), nil
}

// redacted strips the token from an error message. git echoes remote URLs
// into stderr on failure, and those find their way into wrapped errors.
func redacted(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), token, "***")
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s", msg)
}
