package sites

import (
	"fmt"
	"path/filepath"
	"regexp"
)

var siteNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Paths is the on-disk layout of one site.
type Paths struct {
	Root      string // <sites_root>/<site>, the tree backed up, deleted and chowned
	WebRoot   string // <root>/site, deploy target of the post-receive hook
	LogsDir   string // <root>/logs
	AccessLog string
	ErrorLog  string
	Available string // <available_dir>/<site>
	Enabled   string // <enabled_dir>/<site>, symlink to Available
	Unit      string // <unit_dir>/<site>.service
	Repo      string // <git_root>/<site>.git
	BackupDir string // <backup_dir>/<site>
}

// Paths returns the layout for name. It does not touch the filesystem.
func (m *Manager) Paths(name string) Paths {
	root := filepath.Join(m.cfg.SitesRoot, name)
	logs := filepath.Join(root, "logs")
	return Paths{
		Root:      root,
		WebRoot:   filepath.Join(root, "site"),
		LogsDir:   logs,
		AccessLog: filepath.Join(logs, name+"_access.log"),
		ErrorLog:  filepath.Join(logs, name+"_error.log"),
		Available: filepath.Join(m.cfg.AvailableDir, name),
		Enabled:   filepath.Join(m.cfg.EnabledDir, name),
		Unit:      filepath.Join(m.cfg.UnitDir, name+".service"),
		Repo:      filepath.Join(m.cfg.GitRoot, name+".git"),
		BackupDir: filepath.Join(m.cfg.BackupDir, name),
	}
}

// ValidateName accepts names usable as a single path component and a host name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if name == "." || name == ".." || !siteNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
