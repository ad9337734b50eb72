package sites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "example.com"))

	archive, err := h.m.Backup(ctx, "example.com")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(h.cfg.BackupDir, "example.com", "example.com_2026-10-14.tar.gz"), archive)
	assert.FileExists(t, archive)
	require.Len(t, h.archiver.calls, 1)
	assert.Equal(t, h.m.Paths("example.com").Root, h.archiver.calls[0].src)

	// Archives live outside the tree they archive.
	assert.False(t, strings.HasPrefix(archive, h.m.Paths("example.com").Root+string(filepath.Separator)))
}

func TestBackupMissingSite(t *testing.T) {
	h := newHarness(t)

	_, err := h.m.Backup(context.Background(), "ghost.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, h.archiver.calls)
}

func TestBackupChecksFreeSpace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "example.com"))
	require.NoError(t, os.WriteFile(filepath.Join(h.m.Paths("example.com").WebRoot, "index.html"), make([]byte, 4096), 0644))
	h.free = 1024

	_, err := h.m.Backup(ctx, "example.com")
	assert.ErrorIs(t, err, ErrInsufficientSpace)
	assert.Empty(t, h.archiver.calls)
}

func TestBackupAllContinuesPastFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "a.com"))
	require.NoError(t, h.m.New(ctx, "b.com"))
	h.archiver.fail["a.com"] = errors.New("tar: a.com: Cannot open")

	results, err := h.m.BackupAll(ctx)

	var allErr *BackupAllError
	require.ErrorAs(t, err, &allErr)
	assert.Equal(t, 2, allErr.Total)
	require.Len(t, allErr.Failed, 1)
	assert.Equal(t, "a.com", allErr.Failed[0].Site)
	assert.ErrorContains(t, err, "backup failed for 1 of 2 sites: a.com")

	require.Len(t, results, 2)
	assert.Equal(t, "a.com", results[0].Site)
	assert.Error(t, results[0].Err)
	assert.Equal(t, "b.com", results[1].Site)
	assert.NoError(t, results[1].Err)
	assert.FileExists(t, results[1].Archive)
}

func TestBackupAllReadsAvailabilitySetEachTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "a.com"))

	results, err := h.m.BackupAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, h.m.New(ctx, "b.com"))
	results, err = h.m.BackupAll(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestBackupAllReportsAvailableSiteWithoutTree(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.m.New(ctx, "a.com"))
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.AvailableDir, "default"), nil, 0644))

	_, err := h.m.BackupAll(ctx)
	var allErr *BackupAllError
	require.ErrorAs(t, err, &allErr)
	assert.Equal(t, "default", allErr.Failed[0].Site)
	assert.ErrorIs(t, err, ErrNotFound)
}
