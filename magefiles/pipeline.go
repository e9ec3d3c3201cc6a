//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// engine runs the built CLI with the given arguments.
func engine(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", binName, args, err)
	}
	return nil
}

// Sync updates the local TEI-curation checkout.
func Sync() error {
	mg.Deps(Build)
	return engine("sync")
}

// Extract rebuilds data/excerpts.csv from the local checkout.
func Extract() error {
	mg.Deps(Build)
	return engine("extract")
}

// Run executes the full pipeline once: sync, extract, conditional commit.
func Run() error {
	mg.Deps(Build)
	return engine("run")
}

// Reindex ingests the current CSV into the search index.
func Reindex() error {
	mg.Deps(Build)
	return engine("index", "store")
}
