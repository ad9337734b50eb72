// Package sites implements the site lifecycle on top of the filesystem and
// the external tools declared in package adapters. The filesystem is the only
// state; nothing is cached between calls.
package sites

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/adapters"
	"github.com/supreme-majesty/sitectl/pkg/adapters/linux"
	"github.com/supreme-majesty/sitectl/pkg/config"
	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/prompt"
)

// Options carries the collaborators of a Manager. Nil fields get production defaults.
type Options struct {
	Archiver  adapters.Archiver
	Repos     adapters.RepoInitializer
	Certs     adapters.CertIssuer
	Services  adapters.ServiceManager
	WebServer adapters.WebServer
	Confirmer prompt.Confirmer
	Bus       *events.Bus
	Logger    *zap.Logger

	Identity  func() (Identity, error)
	Owner     func() (Identity, error) // user only; defaults to Identity when that is set
	Euid      func() int
	Now       func() time.Time
	FreeSpace func(ctx context.Context, path string) (uint64, error)
}

type Manager struct {
	cfg       config.Config
	archiver  adapters.Archiver
	repos     adapters.RepoInitializer
	certs     adapters.CertIssuer
	services  adapters.ServiceManager
	web       adapters.WebServer
	confirm   prompt.Confirmer
	bus       *events.Bus
	log       *zap.Logger
	identity  func() (Identity, error)
	owner     func() (Identity, error)
	euid      func() int
	now       func() time.Time
	freeSpace func(ctx context.Context, path string) (uint64, error)
}

func NewManager(cfg config.Config, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Archiver == nil || opts.Repos == nil || opts.Certs == nil || opts.Services == nil || opts.WebServer == nil {
		host := linux.NewLinuxAdapter(linux.NewExecRunner(opts.Logger), linux.Options{
			WebServerUnit: cfg.WebServerUnit,
			ACMEEmail:     cfg.ACMEEmail,
		})
		if opts.Archiver == nil {
			opts.Archiver = host
		}
		if opts.Repos == nil {
			opts.Repos = host
		}
		if opts.Certs == nil {
			opts.Certs = host
		}
		if opts.Services == nil {
			opts.Services = host
		}
		if opts.WebServer == nil {
			opts.WebServer = host
		}
	}
	if opts.Confirmer == nil {
		opts.Confirmer = prompt.NewTerminalConfirmer()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Owner == nil {
		opts.Owner = opts.Identity
		if opts.Owner == nil {
			opts.Owner = ResolveOwner
		}
	}
	if opts.Identity == nil {
		group := cfg.ServiceGroup
		opts.Identity = func() (Identity, error) { return ResolveIdentity(group) }
	}
	if opts.Euid == nil {
		opts.Euid = os.Geteuid
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FreeSpace == nil {
		opts.FreeSpace = diskFree
	}

	return &Manager{
		cfg:       cfg,
		archiver:  opts.Archiver,
		repos:     opts.Repos,
		certs:     opts.Certs,
		services:  opts.Services,
		web:       opts.WebServer,
		confirm:   opts.Confirmer,
		bus:       opts.Bus,
		log:       opts.Logger,
		identity:  opts.Identity,
		owner:     opts.Owner,
		euid:      opts.Euid,
		now:       opts.Now,
		freeSpace: opts.FreeSpace,
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() config.Config { return m.cfg }

func (m *Manager) requireRoot() error {
	if m.euid() != 0 {
		return ErrPrivilege
	}
	return nil
}

// begin runs the checks shared by every privileged per-site operation and
// takes the site lock. The caller must run the returned release func.
func (m *Manager) begin(name string) (func(), error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := m.requireRoot(); err != nil {
		return nil, err
	}
	return acquireLock(m.cfg.LockDir, name)
}

func (m *Manager) publish(typ events.EventType, site string, payload map[string]string) {
	m.bus.Publish(events.Event{Type: typ, Site: site, Payload: payload})
}

func (m *Manager) reloadWebServer(ctx context.Context) error {
	if !m.cfg.ReloadWebServer {
		return nil
	}
	if err := m.web.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload web server: %w", err)
	}
	return nil
}

func diskFree(ctx context.Context, path string) (uint64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return u.Free, nil
}
