package linux

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/supreme-majesty/sitectl/pkg/adapters"
)

// Options configures the tools invoked by LinuxAdapter.
type Options struct {
	WebServerUnit string // systemd unit reloaded by Reload, defaults to nginx
	ACMEEmail     string // when set certbot runs non-interactively
}

// LinuxAdapter shells out to tar, git, certbot, nginx and systemctl.
type LinuxAdapter struct {
	runner        adapters.Runner
	webServerUnit string
	acmeEmail     string
}

var (
	_ adapters.Archiver        = (*LinuxAdapter)(nil)
	_ adapters.RepoInitializer = (*LinuxAdapter)(nil)
	_ adapters.CertIssuer      = (*LinuxAdapter)(nil)
	_ adapters.ServiceManager  = (*LinuxAdapter)(nil)
	_ adapters.WebServer       = (*LinuxAdapter)(nil)
)

func NewLinuxAdapter(runner adapters.Runner, opts Options) *LinuxAdapter {
	if runner == nil {
		runner = NewExecRunner(nil)
	}
	if opts.WebServerUnit == "" {
		opts.WebServerUnit = "nginx"
	}
	return &LinuxAdapter{
		runner:        runner,
		webServerUnit: opts.WebServerUnit,
		acmeEmail:     opts.ACMEEmail,
	}
}

// Archive runs tar from the parent of srcDir so entries are rooted at its basename.
func (l *LinuxAdapter) Archive(ctx context.Context, srcDir, destFile string) error {
	srcDir = filepath.Clean(srcDir)
	_, err := l.runner.Run(ctx, "tar", "-czf", destFile, "-C", filepath.Dir(srcDir), filepath.Base(srcDir))
	return err
}

func (l *LinuxAdapter) InitBare(ctx context.Context, dir string) error {
	_, err := l.runner.Run(ctx, "git", "init", "--bare", dir)
	return err
}

// Issue requests one certificate for all domains using certbot's nginx plugin.
func (l *LinuxAdapter) Issue(ctx context.Context, domains []string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no domains to certify")
	}
	args := []string{"--nginx"}
	for _, d := range domains {
		args = append(args, "-d", d)
	}
	if l.acmeEmail != "" {
		args = append(args, "--non-interactive", "--agree-tos", "-m", l.acmeEmail)
	}
	_, err := l.runner.Run(ctx, "certbot", args...)
	return err
}

func (l *LinuxAdapter) StopAndDisable(ctx context.Context, unit string) error {
	_, err := l.runner.Run(ctx, "systemctl", "disable", "--now", unit)
	return err
}

func (l *LinuxAdapter) DaemonReload(ctx context.Context) error {
	_, err := l.runner.Run(ctx, "systemctl", "daemon-reload")
	return err
}

// Reload tests the nginx configuration first, then reloads the unit and
// falls back to a restart when the reload is refused.
func (l *LinuxAdapter) Reload(ctx context.Context) error {
	if _, err := l.runner.Run(ctx, "nginx", "-t"); err != nil {
		return fmt.Errorf("nginx configuration test failed: %w", err)
	}
	if _, err := l.runner.Run(ctx, "systemctl", "reload", l.webServerUnit); err != nil {
		if _, rerr := l.runner.Run(ctx, "systemctl", "restart", l.webServerUnit); rerr != nil {
			return fmt.Errorf("failed to reload %s: %w", l.webServerUnit, rerr)
		}
	}
	return nil
}
