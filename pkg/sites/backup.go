package sites

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/util"
)

// ArchiveName is <site>_<YYYY-MM-DD>.tar.gz.
func (m *Manager) ArchiveName(name string) string {
	return fmt.Sprintf("%s_%s.tar.gz", name, m.now().Format("2006-01-02"))
}

// Backup archives the site tree into <backup_dir>/<site>/ and returns the archive path.
func (m *Manager) Backup(ctx context.Context, name string) (string, error) {
	release, err := m.begin(name)
	if err != nil {
		return "", err
	}
	defer release()

	return m.backup(ctx, name)
}

func (m *Manager) backup(ctx context.Context, name string) (string, error) {
	p := m.Paths(name)
	if !util.IsDir(p.Root) {
		return "", fmt.Errorf("site %s does not exist: %w", name, ErrNotFound)
	}

	if err := os.MkdirAll(p.BackupDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", p.BackupDir, err)
	}

	size, err := treeSize(p.Root)
	if err != nil {
		return "", fmt.Errorf("failed to measure %s: %w", p.Root, err)
	}
	free, err := m.freeSpace(ctx, p.BackupDir)
	if err != nil {
		return "", fmt.Errorf("failed to read free space of %s: %w", p.BackupDir, err)
	}
	if free < size {
		return "", fmt.Errorf("%s needs %d bytes, %d free: %w", p.BackupDir, size, free, ErrInsufficientSpace)
	}

	archive := filepath.Join(p.BackupDir, m.ArchiveName(name))
	if err := m.archiver.Archive(ctx, p.Root, archive); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", name, err)
	}

	m.publish(events.SiteBackedUp, name, map[string]string{"archive": archive})
	return archive, nil
}

// BackupAll backs up every available site, continuing past failures. The
// error, when non-nil, is a *BackupAllError.
func (m *Manager) BackupAll(ctx context.Context) ([]BackupResult, error) {
	if err := m.requireRoot(); err != nil {
		return nil, err
	}

	sites, err := m.List()
	if err != nil {
		return nil, err
	}

	results := make([]BackupResult, 0, len(sites))
	var failed []BackupResult
	for _, s := range sites {
		archive, err := m.Backup(ctx, s.Name)
		res := BackupResult{Site: s.Name, Archive: archive, Err: err}
		results = append(results, res)
		if err != nil {
			m.log.Warn("backup failed", zap.String("site", s.Name), zap.Error(err))
			failed = append(failed, res)
		}
	}

	if len(failed) > 0 {
		return results, &BackupAllError{Total: len(sites), Failed: failed}
	}
	return results, nil
}

// treeSize sums regular file sizes under root without following symlinks.
func treeSize(root string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}
