package sites

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "example.com"))
	p := h.m.Paths("example.com")

	deep := filepath.Join(p.WebRoot, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(deep, 0700))
	require.NoError(t, os.Chmod(deep, 0700))
	deepFile := filepath.Join(deep, "page.html")
	require.NoError(t, os.WriteFile(deepFile, []byte("<p>"), 0600))
	script := filepath.Join(p.WebRoot, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0777))
	require.NoError(t, os.Chmod(script, 0777))

	outside := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(outside, nil, 0600))
	require.NoError(t, os.Symlink(outside, filepath.Join(p.WebRoot, "link")))

	report, err := h.m.Permissions(ctx, "example.com")
	require.NoError(t, err)

	for _, dir := range []string{p.WebRoot, deep, filepath.Join(p.WebRoot, "a")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), dir)
	}
	for _, f := range []string{deepFile, script, p.AccessLog} {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), f)
	}

	root, err := os.Stat(p.Root)
	require.NoError(t, err)
	assert.NotZero(t, root.Mode()&os.ModeSetgid, "setgid kept on the site root")

	target, err := os.Stat(outside)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), target.Mode().Perm(), "symlink target untouched")

	assert.Equal(t, 1, report.SkippedLinks)
	assert.Equal(t, 4, report.Files) // two logs, page.html, run.sh
	assert.Equal(t, 7, report.Dirs)  // root, site, logs, a, b, c, d
}

func TestPermissionsMissingSite(t *testing.T) {
	h := newHarness(t)
	_, err := h.m.Permissions(context.Background(), "ghost.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
