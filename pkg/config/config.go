package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file is not an error.
const DefaultPath = "/etc/sitectl/config.yaml"

// Config holds the filesystem roots and tool settings used by every command.
type Config struct {
	SitesRoot       string `yaml:"sites_root"`        // Per-site trees (<root>/<site>/site, <root>/<site>/logs)
	AvailableDir    string `yaml:"available_dir"`     // Nginx sites-available
	EnabledDir      string `yaml:"enabled_dir"`       // Nginx sites-enabled
	UnitDir         string `yaml:"unit_dir"`          // systemd unit files
	GitRoot         string `yaml:"git_root"`          // Bare repositories (<root>/<site>.git)
	BackupDir       string `yaml:"backup_dir"`        // Archives (<dir>/<site>/<site>_<date>.tar.gz)
	LockDir         string `yaml:"lock_dir"`          // Per-site advisory locks
	ServiceGroup    string `yaml:"service_group"`     // Group paired with the invoking user on site trees
	DeployBranch    string `yaml:"deploy_branch"`     // Branch checked out by the post-receive hook
	WebServerUnit   string `yaml:"web_server_unit"`   // Unit reloaded after enable/disable
	ReloadWebServer bool   `yaml:"reload_web_server"` // Reload the web server after link changes
	ACMEEmail       string `yaml:"acme_email"`        // Enables non-interactive certbot runs
	VhostTemplate   string `yaml:"vhost_template"`    // Optional override of the embedded server block
	AuditLog        string `yaml:"audit_log"`         // Optional JSON log of every mutation
}

// Default returns the stock Debian/Ubuntu layout.
func Default() Config {
	return Config{
		SitesRoot:       "/var/www",
		AvailableDir:    "/etc/nginx/sites-available",
		EnabledDir:      "/etc/nginx/sites-enabled",
		UnitDir:         "/etc/systemd/system",
		GitRoot:         "/var/repo",
		BackupDir:       "/var/backups/sites",
		LockDir:         "/run/lock/sitectl",
		ServiceGroup:    "www-data",
		DeployBranch:    "master",
		WebServerUnit:   "nginx",
		ReloadWebServer: true,
	}
}

// Load applies, in order, defaults, the YAML file at path and SITECTL_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFromFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := mergeFromEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func mergeFromEnv(cfg *Config) error {
	type envMap struct {
		key string
		set func(string) error
	}
	str := func(dst *string) func(string) error {
		return func(v string) error {
			*dst = v
			return nil
		}
	}
	maps := []envMap{
		{key: "SITECTL_SITES_ROOT", set: str(&cfg.SitesRoot)},
		{key: "SITECTL_AVAILABLE_DIR", set: str(&cfg.AvailableDir)},
		{key: "SITECTL_ENABLED_DIR", set: str(&cfg.EnabledDir)},
		{key: "SITECTL_UNIT_DIR", set: str(&cfg.UnitDir)},
		{key: "SITECTL_GIT_ROOT", set: str(&cfg.GitRoot)},
		{key: "SITECTL_BACKUP_DIR", set: str(&cfg.BackupDir)},
		{key: "SITECTL_LOCK_DIR", set: str(&cfg.LockDir)},
		{key: "SITECTL_SERVICE_GROUP", set: str(&cfg.ServiceGroup)},
		{key: "SITECTL_DEPLOY_BRANCH", set: str(&cfg.DeployBranch)},
		{key: "SITECTL_WEB_SERVER_UNIT", set: str(&cfg.WebServerUnit)},
		{key: "SITECTL_ACME_EMAIL", set: str(&cfg.ACMEEmail)},
		{key: "SITECTL_VHOST_TEMPLATE", set: str(&cfg.VhostTemplate)},
		{key: "SITECTL_AUDIT_LOG", set: str(&cfg.AuditLog)},
		{key: "SITECTL_RELOAD_WEB_SERVER", set: func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("SITECTL_RELOAD_WEB_SERVER: %w", err)
			}
			cfg.ReloadWebServer = b
			return nil
		}},
	}
	for _, m := range maps {
		if v, ok := os.LookupEnv(m.key); ok {
			if err := m.set(strings.TrimSpace(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate rejects relative roots and empty names.
func (c Config) Validate() error {
	dirs := []struct {
		key, val string
	}{
		{"sites_root", c.SitesRoot},
		{"available_dir", c.AvailableDir},
		{"enabled_dir", c.EnabledDir},
		{"unit_dir", c.UnitDir},
		{"git_root", c.GitRoot},
		{"backup_dir", c.BackupDir},
		{"lock_dir", c.LockDir},
	}
	for _, d := range dirs {
		if d.val == "" {
			return fmt.Errorf("%s cannot be empty", d.key)
		}
		if !filepath.IsAbs(d.val) {
			return fmt.Errorf("%s must be an absolute path, got %q", d.key, d.val)
		}
	}
	if c.ServiceGroup == "" {
		return fmt.Errorf("service_group cannot be empty")
	}
	if c.DeployBranch == "" {
		return fmt.Errorf("deploy_branch cannot be empty")
	}
	if c.ReloadWebServer && c.WebServerUnit == "" {
		return fmt.Errorf("web_server_unit cannot be empty when reload_web_server is set")
	}
	return nil
}
