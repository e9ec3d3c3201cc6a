// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive fetches the companion repository as a tarball through the
// GitHub API. It serves runners without a git binary and avoids cloning
// history for repositories where only the XML payload matters.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tibschol/excerpt-engine/internal/httputil"
	"github.com/tibschol/excerpt-engine/pkg/types"
)

// apiBase is a variable so tests can point the client at a local server.
var apiBase = "https://api.github.com"

// Fetch downloads the tarball of the companion repository at the configured
// branch and unpacks its XML payload under cfg.Dir, stripping the tarball's
// top-level directory. Existing files are overwritten.
func Fetch(ctx context.Context, client *http.Client, cfg types.SyncConfig, w io.Writer) error {
	slug, err := repoSlug(cfg.RepoURL)
	if err != nil {
		return err
	}
	ref := cfg.Branch
	if ref == "" {
		ref = "main"
	}

	url := fmt.Sprintf("%s/repos/%s/tarball/%s", apiBase, slug, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building tarball request: %w", err)
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	fmt.Fprintf(w, "downloading: %s@%s (archive)\n", slug, ref)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("downloading tarball for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading tarball for %s: HTTP %d", slug, resp.StatusCode)
	}

	n, err := unpackXML(resp.Body, cfg.Dir)
	if err != nil {
		return fmt.Errorf("unpacking tarball for %s: %w", slug, err)
	}

	fmt.Fprintf(w, "unpacked: %d xml files into %s\n", n, cfg.Dir)
	return nil
}

// repoSlug normalizes a repository reference to "owner/name". It accepts a
// bare slug or a github.com clone URL.
func repoSlug(repo string) (string, error) {
	s := strings.TrimSuffix(repo, ".git")
	s = strings.TrimPrefix(s, "https://github.com/")
	s = strings.TrimPrefix(s, "git@github.com:")
	s = strings.Trim(s, "/")
	if s == "" || strings.Count(s, "/") != 1 || strings.Contains(s, "://") {
		return "", fmt.Errorf("cannot derive owner/name from repository %q", repo)
	}
	return s, nil
}

// unpackXML streams a gzipped tarball, writing every .xml entry under
// destDir with the leading path component removed. Returns the number of
// files written.
func unpackXML(r io.Reader, destDir string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	count := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("reading tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".xml") {
			continue
		}

		rel, err := stripTopDir(hdr.Name)
		if err != nil {
			return count, err
		}

		dest := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return count, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		f, err := os.Create(dest)
		if err != nil {
			return count, fmt.Errorf("creating %s: %w", dest, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return count, fmt.Errorf("writing %s: %w", dest, err)
		}
		if err := f.Close(); err != nil {
			return count, fmt.Errorf("closing %s: %w", dest, err)
		}
		count++
	}
}

// stripTopDir removes the "<owner>-<repo>-<sha>/" prefix GitHub tarballs
// carry and rejects entries that would escape the destination.
func stripTopDir(name string) (string, error) {
	clean := path.Clean(name)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("unsafe tar entry %q", name)
	}
	parts := strings.SplitN(clean, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("unexpected tar entry %q", name)
	}
	return parts[1], nil
}
