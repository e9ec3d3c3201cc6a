// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitops

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// messagePrefix is the fixed commit-message prefix for artifact updates.
const messagePrefix = "chore(data): update excerpts.csv – "

// timestampLayout renders the commit timestamp, e.g. "2026-08-30 12:30 UTC".
const timestampLayout = "2006-01-02 15:04 UTC"

// CommitMessage builds the timestamped commit message for an artifact update.
func CommitMessage(now time.Time) string {
	return messagePrefix + now.UTC().Format(timestampLayout)
}

// Result describes the outcome of a conditional commit.
type Result struct {
	// Committed reports whether a commit was created and pushed.
	Committed bool

	// Message is the commit message used, empty when nothing was committed.
	Message string
}

// CommitIfChanged stages cfg.CSVPath and checks the staged diff. When the
// diff is empty it prints "No changes to commit." and returns without
// committing. Otherwise it creates exactly one commit with a timestamped
// message and pushes it to the configured remote.
func CommitIfChanged(ctx context.Context, cfg types.CommitConfig, now time.Time, w io.Writer) (Result, error) {
	return commitWith(ctx, defaultExec, cfg, now, w)
}

func commitWith(ctx context.Context, exec executor, cfg types.CommitConfig, now time.Time, w io.Writer) (Result, error) {
	if _, err := exec.LookPath(binGit); err != nil {
		return Result{}, fmt.Errorf("git binary not found: %w", err)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	remote := cfg.Remote
	if remote == "" {
		remote = "origin"
	}

	if err := exec.Run(ctx, dir, binGit, "add", "--", cfg.CSVPath); err != nil {
		return Result{}, fmt.Errorf("staging %s: %w", cfg.CSVPath, err)
	}

	// Exit 0 means an empty staged diff, exit 1 means staged changes.
	err := exec.Run(ctx, dir, binGit, "diff", "--cached", "--quiet", "--", cfg.CSVPath)
	switch {
	case err == nil:
		fmt.Fprintln(w, "No changes to commit.")
		return Result{}, nil
	case exitCode(err) != 1:
		return Result{}, fmt.Errorf("checking staged diff: %w", err)
	}

	message := CommitMessage(now)
	commitArgs := []string{}
	if cfg.AuthorName != "" {
		commitArgs = append(commitArgs, "-c", "user.name="+cfg.AuthorName)
	}
	if cfg.AuthorEmail != "" {
		commitArgs = append(commitArgs, "-c", "user.email="+cfg.AuthorEmail)
	}
	commitArgs = append(commitArgs, "commit", "-m", message)
	if err := exec.Run(ctx, dir, binGit, commitArgs...); err != nil {
		return Result{}, fmt.Errorf("committing: %w", err)
	}

	if err := push(ctx, exec, dir, remote, cfg); err != nil {
		return Result{}, err
	}

	fmt.Fprintf(w, "committed: %s\n", message)
	return Result{Committed: true, Message: message}, nil
}

// push sends the new commit to the remote. With a token configured the push
// goes to an authenticated URL built from the remote's https URL, so runs
// detached from a credential helper still publish.
func push(ctx context.Context, exec executor, dir, remote string, cfg types.CommitConfig) error {
	branch := cfg.Branch
	if branch == "" {
		current, err := exec.Output(ctx, dir, binGit, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return fmt.Errorf("resolving current branch: %w", err)
		}
		branch = current
	}

	target := remote
	if cfg.Token != "" {
		remoteURL, err := exec.Output(ctx, dir, binGit, "remote", "get-url", remote)
		if err != nil {
			return fmt.Errorf("resolving remote %s: %w", remote, err)
		}
		target, err = authURL(remoteURL, cfg.Token)
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}

	if err := exec.Run(ctx, dir, binGit, "push", target, "HEAD:"+branch); err != nil {
		return redacted(fmt.Errorf("pushing to %s: %w", remote, err), cfg.Token)
	}
	return nil
}
