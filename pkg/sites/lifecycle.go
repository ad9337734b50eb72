package sites

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/assets"
	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/util"
)

// Site is one entry of the availability set.
type Site struct {
	Name    string
	Enabled bool
}

// List reads the availability set and marks the entries linked into the
// enabled set. Results are sorted by name.
func (m *Manager) List() ([]Site, error) {
	entries, err := os.ReadDir(m.cfg.AvailableDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Site{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.cfg.AvailableDir, err)
	}

	sites := make([]Site, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		sites = append(sites, Site{
			Name:    name,
			Enabled: util.Lexists(m.Paths(name).Enabled),
		})
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites, nil
}

// New creates the site tree, its log files and, when missing, its
// availability entry. Nothing is rolled back if a step fails.
func (m *Manager) New(ctx context.Context, name string) error {
	release, err := m.begin(name)
	if err != nil {
		return err
	}
	defer release()

	id, err := m.identity()
	if err != nil {
		return err
	}

	p := m.Paths(name)
	for _, dir := range []string{p.WebRoot, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	for _, logFile := range []string{p.AccessLog, p.ErrorLog} {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", logFile, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to create %s: %w", logFile, err)
		}
	}

	for _, path := range []string{p.Root, p.WebRoot, p.LogsDir, p.AccessLog, p.ErrorLog} {
		if err := os.Chown(path, id.UID, id.GroupGID); err != nil {
			return fmt.Errorf("failed to set owner of %s: %w", path, err)
		}
	}
	for _, dir := range []string{p.Root, p.WebRoot} {
		if err := os.Chmod(dir, 0755|os.ModeSetuid|os.ModeSetgid); err != nil {
			return fmt.Errorf("failed to set mode of %s: %w", dir, err)
		}
	}

	if !util.Lexists(p.Available) {
		conf, err := assets.RenderVhost(m.cfg.VhostTemplate, assets.VhostData{
			Name:      name,
			WebRoot:   p.WebRoot,
			AccessLog: p.AccessLog,
			ErrorLog:  p.ErrorLog,
		})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(m.cfg.AvailableDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.cfg.AvailableDir, err)
		}
		if err := os.WriteFile(p.Available, conf, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.Available, err)
		}
	} else {
		m.log.Debug("keeping existing availability entry", zap.String("path", p.Available))
	}

	m.publish(events.SiteCreated, name, map[string]string{"root": p.Root, "owner": id.User})
	return nil
}

// Enable links the availability entry into the enabled set. An existing
// enabled entry, dangling or not, is never replaced.
func (m *Manager) Enable(ctx context.Context, name string) error {
	release, err := m.begin(name)
	if err != nil {
		return err
	}
	defer release()

	p := m.Paths(name)
	if !util.Exists(p.Available) {
		return fmt.Errorf("site %s is not available (%s): %w", name, p.Available, ErrNotFound)
	}
	if util.Lexists(p.Enabled) {
		return fmt.Errorf("site %s is already enabled (%s): %w", name, p.Enabled, ErrAlreadyExists)
	}

	if err := os.MkdirAll(m.cfg.EnabledDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.cfg.EnabledDir, err)
	}
	if err := os.Symlink(p.Available, p.Enabled); err != nil {
		return fmt.Errorf("failed to enable %s: %w", name, err)
	}
	m.publish(events.SiteEnabled, name, map[string]string{"link": p.Enabled})

	return m.reloadWebServer(ctx)
}

// Disable asks for confirmation, then removes the enabled entry. An
// already-disabled site is a success.
func (m *Manager) Disable(ctx context.Context, name string) error {
	release, err := m.begin(name)
	if err != nil {
		return err
	}
	defer release()

	if !m.confirm.Confirm(fmt.Sprintf("Disable site %s?", name)) {
		return ErrAborted
	}

	removed, err := m.unlink(name)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	return m.reloadWebServer(ctx)
}

// unlink removes the enabled entry without asking. It reports whether an
// entry was present.
func (m *Manager) unlink(name string) (bool, error) {
	p := m.Paths(name)
	if err := os.Remove(p.Enabled); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to disable %s: %w", name, err)
	}
	m.publish(events.SiteDisabled, name, map[string]string{"link": p.Enabled})
	return true, nil
}

// DeleteOptions tunes Delete.
type DeleteOptions struct {
	SkipBackup bool
}

// Delete backs the site up (unless skipped), then removes its tree, enabled
// link, availability entry and service unit. It asks once.
func (m *Manager) Delete(ctx context.Context, name string, opts DeleteOptions) error {
	release, err := m.begin(name)
	if err != nil {
		return err
	}
	defer release()

	p := m.Paths(name)
	if !util.IsDir(p.Root) {
		return fmt.Errorf("site %s does not exist: %w", name, ErrNotFound)
	}

	question := fmt.Sprintf("Back up and delete site %s?", name)
	if opts.SkipBackup {
		question = fmt.Sprintf("Delete site %s without a backup?", name)
	}
	if !m.confirm.Confirm(question) {
		return ErrAborted
	}

	if !opts.SkipBackup {
		if _, err := m.backup(ctx, name); err != nil {
			return fmt.Errorf("backup before delete failed, nothing was removed: %w", err)
		}
	}

	if err := os.RemoveAll(p.Root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p.Root, err)
	}
	wasEnabled, err := m.unlink(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p.Available); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", p.Available, err)
	}
	if err := m.removeUnit(ctx, name, p.Unit); err != nil {
		return err
	}

	m.publish(events.SiteDeleted, name, map[string]string{"root": p.Root})

	if wasEnabled {
		return m.reloadWebServer(ctx)
	}
	return nil
}

// removeUnit stops and deletes <site>.service when present. Stop failures
// are logged since the unit may never have been loaded.
func (m *Manager) removeUnit(ctx context.Context, name, unitPath string) error {
	if !util.Lexists(unitPath) {
		return nil
	}
	unit := name + ".service"
	if err := m.services.StopAndDisable(ctx, unit); err != nil {
		m.log.Warn("failed to stop unit", zap.String("unit", unit), zap.Error(err))
	}
	if err := os.Remove(unitPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", unitPath, err)
	}
	if err := m.services.DaemonReload(ctx); err != nil {
		m.log.Warn("systemd daemon-reload failed", zap.Error(err))
	}
	return nil
}
