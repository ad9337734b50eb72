package sites

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/util"
)

// PermissionsReport counts what Permissions touched.
type PermissionsReport struct {
	Dirs          int
	Files         int
	SkippedLinks  int
	SkippedOthers int
}

// Permissions chowns the whole site tree to <user>:<service group> and sets
// 0755 on directories (keeping setuid/setgid) and 0644 on files. Symlinks
// are neither followed nor modified.
func (m *Manager) Permissions(ctx context.Context, name string) (PermissionsReport, error) {
	var report PermissionsReport

	release, err := m.begin(name)
	if err != nil {
		return report, err
	}
	defer release()

	p := m.Paths(name)
	if !util.IsDir(p.Root) {
		return report, fmt.Errorf("site %s does not exist: %w", name, ErrNotFound)
	}
	id, err := m.identity()
	if err != nil {
		return report, err
	}

	err = filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			report.SkippedLinks++
			return nil
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.Chown(path, id.UID, id.GroupGID); err != nil {
				return err
			}
			mode := fs.FileMode(0755) | info.Mode()&(fs.ModeSetuid|fs.ModeSetgid)
			if err := os.Chmod(path, mode); err != nil {
				return err
			}
			report.Dirs++
		case d.Type().IsRegular():
			if err := os.Chown(path, id.UID, id.GroupGID); err != nil {
				return err
			}
			if err := os.Chmod(path, 0644); err != nil {
				return err
			}
			report.Files++
		default:
			// Sockets, fifos and devices keep their mode.
			report.SkippedOthers++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to apply permissions to %s: %w", p.Root, err)
	}

	m.publish(events.PermissionsApplied, name, map[string]string{
		"owner": id.User,
		"dirs":  strconv.Itoa(report.Dirs),
		"files": strconv.Itoa(report.Files),
	})
	return report, nil
}
