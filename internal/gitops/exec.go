// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitops drives the git binary for companion-repository sync and
// conditional publication of the excerpts artifact.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const binGit = "git"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)

	// Run executes name with args in dir, returning combined stderr in the
	// error message on failure.
	Run(ctx context.Context, dir string, name string, args ...string) error

	// Output executes name with args in dir and returns trimmed stdout.
	Output(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return wrapExit(err, stderr.String())
	}
	return nil
}

func (o *osExecutor) Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", wrapExit(err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

var defaultExec executor = &osExecutor{}

// statusError carries the process exit code through error wrapping.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// wrapExit folds a command failure and its captured stderr into a
// statusError so callers can branch on the exit code.
func wrapExit(err error, stderr string) error {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return &statusError{code: code, err: err}
}

// exitCode extracts the process exit code from an executor error, or -1.
func exitCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return -1
}
