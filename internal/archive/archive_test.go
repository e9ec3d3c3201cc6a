// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tibschol/excerpt-engine/pkg/types"
)

// tarball builds an in-memory gzipped tar with the given name→content entries.
func tarball(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestRepoSlug(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		want    string
		wantErr bool
	}{
		{"bare slug", "tibschol/TEI-curation", "tibschol/TEI-curation", false},
		{"https url", "https://github.com/tibschol/TEI-curation.git", "tibschol/TEI-curation", false},
		{"https url without suffix", "https://github.com/tibschol/TEI-curation", "tibschol/TEI-curation", false},
		{"ssh url", "git@github.com:tibschol/TEI-curation.git", "tibschol/TEI-curation", false},
		{"trailing slash", "https://github.com/tibschol/TEI-curation/", "tibschol/TEI-curation", false},
		{"empty", "", "", true},
		{"missing owner", "TEI-curation", "", true},
		{"foreign host", "https://gitlab.com/o/r.git", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repoSlug(tt.repo)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripTopDir(t *testing.T) {
	got, err := stripTopDir("tibschol-TEI-curation-abc123/010_manannot/NKG0042.xml")
	require.NoError(t, err)
	assert.Equal(t, "010_manannot/NKG0042.xml", got)

	_, err = stripTopDir("../escape.xml")
	require.Error(t, err)

	_, err = stripTopDir("toplevel.xml")
	require.Error(t, err)
}

func TestUnpackXML(t *testing.T) {
	dir := t.TempDir()
	data := tarball(t, map[string]string{
		"repo-abc/010_manannot/NKG0042.xml": "<TEI/>",
		"repo-abc/010_manannot/NKG0043.xml": "<TEI/>",
		"repo-abc/README.md":                "not xml",
	})

	n, err := unpackXML(bytes.NewReader(data), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	raw, err := os.ReadFile(filepath.Join(dir, "010_manannot", "NKG0042.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<TEI/>", string(raw))

	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.True(t, os.IsNotExist(err), "non-xml entries must be skipped")
}

func TestUnpackXML_BadStream(t *testing.T) {
	_, err := unpackXML(strings.NewReader("not a gzip stream"), t.TempDir())
	require.Error(t, err)
}

func TestFetch(t *testing.T) {
	data := tarball(t, map[string]string{
		"tibschol-TEI-curation-abc/010_manannot/NKG0042.xml": "<TEI/>",
	})

	var gotPath, gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write(data)
	}))
	defer srv.Close()

	restore := apiBase
	apiBase = srv.URL
	defer func() { apiBase = restore }()

	dir := t.TempDir()
	cfg := types.SyncConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "excerpt-engine/0.1"},
		RepoURL:    "https://github.com/tibschol/TEI-curation.git",
		Branch:     "main",
		Dir:        dir,
		Token:      "ghp_secret123",
	}

	var out bytes.Buffer
	err := Fetch(context.Background(), srv.Client(), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, "/repos/tibschol/TEI-curation/tarball/main", gotPath)
	assert.Equal(t, "Bearer ghp_secret123", gotAuth)
	assert.Equal(t, "excerpt-engine/0.1", gotAgent)

	assert.FileExists(t, filepath.Join(dir, "010_manannot", "NKG0042.xml"))
	assert.Contains(t, out.String(), "downloading: tibschol/TEI-curation@main (archive)")
	assert.Contains(t, out.String(), "unpacked: 1 xml files into "+dir)
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	restore := apiBase
	apiBase = srv.URL
	defer func() { apiBase = restore }()

	cfg := types.SyncConfig{RepoURL: "tibschol/TEI-curation", Dir: t.TempDir()}
	err := Fetch(context.Background(), srv.Client(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
